package selection

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// MaxCrossValidation picks the candidate with the highest rejection rate at
// significance level alpha over numRuns repeated tests on the training
// partition.
//
// The training split is fixed for the whole selection run, so the observed
// statistic per kernel is computed once; run-to-run variation comes from the
// freshly sampled permutation null of each run. Candidates are evaluated by
// installing them on the estimator in turn.
type MaxCrossValidation struct {
	reg     *kernel.Registry
	est     Estimator
	numRuns int
	alpha   float64
}

// NewMaxCrossValidation creates the policy over reg, estimating through est.
func NewMaxCrossValidation(reg *kernel.Registry, est Estimator, numRuns int, alpha float64) *MaxCrossValidation {
	return &MaxCrossValidation{reg: reg, est: est, numRuns: numRuns, alpha: alpha}
}

// Select implements Policy.
func (p *MaxCrossValidation) Select() (Result, error) {
	const op = "MaxCrossValidation"

	numK := p.reg.NumKernels()
	if numK == 0 {
		return Result{}, errors.NewEmptyRegistryError(op)
	}
	if p.numRuns < 1 {
		return Result{}, errors.NewValueError(op,
			fmt.Sprintf("number of runs must be positive, got %d", p.numRuns))
	}
	if p.alpha <= 0 || p.alpha >= 1 {
		return Result{}, errors.NewValueError(op,
			fmt.Sprintf("significance level must lie in (0, 1), got %v", p.alpha))
	}

	rates := make([]float64, numK)
	for ki := 0; ki < numK; ki++ {
		p.est.SetKernel(p.reg.KernelAt(ki))

		observed, err := p.est.ComputeStatistic()
		if err != nil {
			return Result{}, err
		}

		rejections := 0
		for run := 0; run < p.numRuns; run++ {
			null, err := p.est.SampleNull()
			if err != nil {
				return Result{}, err
			}
			sort.Float64s(null)
			threshold := stat.Quantile(1-p.alpha, stat.Empirical, null, nil)
			if observed > threshold {
				rejections++
			}
		}
		rates[ki] = float64(rejections) / float64(p.numRuns)
	}

	best := floats.MaxIdx(rates)
	return Result{Kernel: p.reg.KernelAt(best)}, nil
}
