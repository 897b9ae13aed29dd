// Package data defines the streaming contract between sample providers and
// the estimation engine.
//
// Samples from the two distributions arrive in bursts: bundles of equally
// many fixed-size blocks from each distribution. The engine consumes bursts
// until an empty one signals the end of the stream; it never looks at more
// than one burst at a time, which keeps memory bounded regardless of the
// total sample count.
package data

import (
	"gonum.org/v1/gonum/mat"
)

// Burst is one streaming step: the i-th entries of P and Q are the i-th
// block pair. Both distributions always contribute the same number of
// blocks; rows are samples, columns are features.
type Burst struct {
	P []mat.Matrix
	Q []mat.Matrix
}

// NumBlocks returns the number of blocks per distribution in this burst.
func (b Burst) NumBlocks() int {
	return len(b.P)
}

// Empty reports whether the burst carries no blocks, which terminates the
// stream.
func (b Burst) Empty() bool {
	return len(b.P) == 0 && len(b.Q) == 0
}
