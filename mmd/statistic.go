package mmd

import (
	"github.com/YuminosukeSato/stattest/compute"
	"github.com/YuminosukeSato/stattest/core/online"
	"github.com/YuminosukeSato/stattest/data"
	"github.com/YuminosukeSato/stattest/pkg/errors"
	"github.com/YuminosukeSato/stattest/pkg/log"
)

// ComputeStatistic streams the full source once and returns the normalized
// statistic estimate.
func (m *MMD) ComputeStatistic() (float64, error) {
	stat, _, err := m.ComputeStatisticVariance()
	return stat, err
}

// ComputeVariance streams the full source once and returns the variance
// estimate under the configured estimation method.
func (m *MMD) ComputeVariance() (float64, error) {
	_, va, err := m.ComputeStatisticVariance()
	return va, err
}

// ComputeStatisticVariance streams the full source once, folding per-block
// statistic and variance scalars into online accumulators, and returns the
// normalized statistic together with the variance estimate.
//
// The statistic is normalized exactly once. The variance is normalized only
// in permutation mode, where the raw second-moment sum of permuted statistic
// values is scaled; direct mode returns the plain running mean of the
// per-block variance job.
func (m *MMD) ComputeStatisticVariance() (float64, float64, error) {
	const op = "ComputeStatisticVariance"

	kern, err := m.activeKernel(op)
	if err != nil {
		return 0, 0, err
	}

	bx := m.src.BlockSizeAt(data.DistP)
	by := m.src.BlockSizeAt(data.DistQ)
	if err := validateBlockShape(op, m.statType, bx, by); err != nil {
		return 0, 0, err
	}

	var varJob compute.Job
	switch m.varMethod {
	case DirectEstimation:
		varJob = newDirectVarianceJob(bx)
	case PermutationEstimation:
		varJob = newPermutationJob(m.statType, bx, m.rng, &m.rngMu)
	default:
		return 0, 0, errors.NewUnsupportedMethodError(op, m.varMethod.String())
	}

	mgr := m.manager()
	defer mgr.Done()
	mgr.EnqueueJob(newStatisticJob(m.statType, bx))
	mgr.EnqueueJob(varJob)

	var statAcc online.Mean
	var varMean online.Mean
	var varAcc online.Variance

	m.src.Start()
	defer m.src.End()

	bursts := 0
	for {
		b := m.src.Next()
		if b.Empty() {
			break
		}
		if err := m.runBurst(b, kern, mgr); err != nil {
			return 0, 0, err
		}

		stats := mgr.Result(0)
		vars := mgr.Result(1)
		for i := range stats {
			statAcc.Update(float64(stats[i]))
		}
		if m.varMethod == DirectEstimation {
			for i := range vars {
				varMean.Update(float64(vars[i]))
			}
		} else {
			for i := range vars {
				varAcc.Update(float64(vars[i]))
			}
		}

		bursts++
		m.logger.Debug("burst folded",
			log.OperationKey, log.OperationComputeStatistic,
			log.BurstsKey, bursts,
			log.BlocksKey, b.NumBlocks())
	}

	stat := m.norm.NormalizeStatistic(statAcc.Value())
	var va float64
	if m.varMethod == DirectEstimation {
		va = varMean.Value()
	} else {
		va = m.norm.NormalizeVariance(varAcc.M2())
	}

	if err := errors.CheckScalar(op, stat, 0); err != nil {
		return 0, 0, err
	}
	if err := errors.CheckScalar(op, va, 0); err != nil {
		return 0, 0, err
	}

	m.logger.Debug("statistic computed",
		log.OperationKey, log.OperationComputeStatistic,
		log.StatisticKey, stat,
		log.VarianceKey, va,
		log.BurstsKey, bursts)
	return stat, va, nil
}
