// Package kernel defines the kernel contract for streaming two-sample tests.
//
// A Kernel computes a square Gram matrix over a block of merged samples. The
// estimation engine treats kernels as opaque: it clones a template, initialises
// the clone on a data block, extracts the float32 Gram matrix and releases the
// clone. Kernel function implementations (Gaussian, polynomial, ...) live in
// user code; this package ships only the framework machinery: the Matrix type
// with its buffer pool, the Precomputed and Combined wrappers, and the slot
// Registry used by the engine and kernel selection.
package kernel

import (
	"gonum.org/v1/gonum/mat"
)

// Kernel is the contract between the estimation engine and a kernel function.
//
// Implementations must support the clone-init-matrix-release cycle: Clone
// returns an independent instance sharing only immutable configuration, Init
// binds it to feature blocks (rows = samples), Matrix materialises the Gram
// matrix over the bound data, and Release drops the data binding so the
// instance can be discarded. Clones are evaluated concurrently across blocks,
// so Init and Matrix must not mutate state shared with the template.
type Kernel interface {
	// Clone returns an independent copy suitable for concurrent evaluation.
	Clone() Kernel

	// Init binds the kernel to left- and right-hand feature blocks.
	// For the symmetric Gram matrices used by the engine, lhs == rhs.
	Init(lhs, rhs mat.Matrix) error

	// Matrix computes the Gram matrix over the bound data.
	Matrix() (Matrix, error)

	// Release drops the data binding. The kernel may be re-initialised
	// afterwards.
	Release()
}

// Bandwidth is an optional capability interface for kernels parameterised by
// a length scale. The median heuristic ranks candidate kernels by how close
// their bandwidth lies to the median pairwise distance of the data.
type Bandwidth interface {
	Bandwidth() float64
}
