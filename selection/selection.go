// Package selection provides kernel selection policies for the streaming
// two-sample test.
//
// A Policy examines a registry of candidate kernels and picks the one (or the
// weighted combination) expected to give the most powerful test. Policies
// reach the estimation engine only through the Estimator interface, so they
// stay decoupled from its internals, and the engine stays decoupled from
// policy math.
package selection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/kernel"
)

// ridge regularizes covariance terms before ratios and solves.
const ridge = 1e-5

// Result is a policy's choice: the winning kernel and, for weighted policies,
// the weights over the candidate registry.
type Result struct {
	Kernel  kernel.Kernel
	Weights []float64
}

// Policy selects a kernel from a candidate registry.
type Policy interface {
	Select() (Result, error)
}

// Estimator is the slice of the estimation engine that policies consume.
// SetKernel swaps the kernel under test; selection runs leave the winner
// installed afterwards, so transient swaps during evaluation are fine.
type Estimator interface {
	SetKernel(k kernel.Kernel)
	ComputeStatistic() (float64, error)
	ComputeStatisticAndQ() ([]float64, *mat.Dense, error)
	SampleNull() ([]float64, error)
}
