package selection

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/kernel"
)

// MaxMeasure picks the candidate with the largest statistic estimate on the
// training partition.
type MaxMeasure struct {
	reg *kernel.Registry
	est Estimator
}

// NewMaxMeasure creates the policy over reg, estimating through est.
func NewMaxMeasure(reg *kernel.Registry, est Estimator) *MaxMeasure {
	return &MaxMeasure{reg: reg, est: est}
}

// Select implements Policy.
func (p *MaxMeasure) Select() (Result, error) {
	stats, _, err := p.est.ComputeStatisticAndQ()
	if err != nil {
		return Result{}, err
	}
	best := floats.MaxIdx(stats)
	return Result{Kernel: p.reg.KernelAt(best)}, nil
}

// WeightedMaxMeasure returns a convex kernel combination maximizing the
// weighted statistic under a unit-norm constraint: weights proportional to
// the statistic vector, projected to be non-negative.
type WeightedMaxMeasure struct {
	reg *kernel.Registry
	est Estimator
}

// NewWeightedMaxMeasure creates the weighted policy over reg, estimating
// through est.
func NewWeightedMaxMeasure(reg *kernel.Registry, est Estimator) *WeightedMaxMeasure {
	return &WeightedMaxMeasure{reg: reg, est: est}
}

// Select implements Policy.
func (p *WeightedMaxMeasure) Select() (Result, error) {
	stats, _, err := p.est.ComputeStatisticAndQ()
	if err != nil {
		return Result{}, err
	}

	// 測度最大化では共分散を単位行列に置き換える
	n := len(stats)
	eye := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		eye.Set(i, i, 1)
	}

	w, err := solveWeights(stats, eye)
	if err != nil {
		return Result{}, err
	}
	combined, err := combineRegistry(p.reg, w)
	if err != nil {
		return Result{}, err
	}
	return Result{Kernel: combined, Weights: w}, nil
}
