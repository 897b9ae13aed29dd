package selection

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/stattest/kernel"
)

// MaxTestPower picks the candidate maximizing the estimated test power
// proxy stat_i / sqrt(Q_ii + ridge), the signal-to-noise ratio of the
// statistic against its own streaming variance.
type MaxTestPower struct {
	reg *kernel.Registry
	est Estimator
}

// NewMaxTestPower creates the policy over reg, estimating through est.
func NewMaxTestPower(reg *kernel.Registry, est Estimator) *MaxTestPower {
	return &MaxTestPower{reg: reg, est: est}
}

// Select implements Policy.
func (p *MaxTestPower) Select() (Result, error) {
	stats, q, err := p.est.ComputeStatisticAndQ()
	if err != nil {
		return Result{}, err
	}

	ratios := make([]float64, len(stats))
	for i := range stats {
		ratios[i] = stats[i] / math.Sqrt(q.At(i, i)+ridge)
	}
	best := floats.MaxIdx(ratios)
	return Result{Kernel: p.reg.KernelAt(best)}, nil
}

// WeightedMaxTestPower returns a convex kernel combination maximizing the
// power proxy w'stat / sqrt(w'Qw): weights solve (Q + ridge*I) w = stat,
// projected to be non-negative and normalized to sum to one.
type WeightedMaxTestPower struct {
	reg *kernel.Registry
	est Estimator
}

// NewWeightedMaxTestPower creates the weighted policy over reg, estimating
// through est.
func NewWeightedMaxTestPower(reg *kernel.Registry, est Estimator) *WeightedMaxTestPower {
	return &WeightedMaxTestPower{reg: reg, est: est}
}

// Select implements Policy.
func (p *WeightedMaxTestPower) Select() (Result, error) {
	stats, q, err := p.est.ComputeStatisticAndQ()
	if err != nil {
		return Result{}, err
	}

	w, err := solveWeights(stats, q)
	if err != nil {
		return Result{}, err
	}
	combined, err := combineRegistry(p.reg, w)
	if err != nil {
		return Result{}, err
	}
	return Result{Kernel: combined, Weights: w}, nil
}
