package mmd

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/stattest/pkg/errors"
	"github.com/YuminosukeSato/stattest/pkg/log"
)

// PValue returns the probability of observing a statistic at least as large
// as the given one under the null hypothesis, using the configured null
// approximation.
func (m *MMD) PValue(statistic float64) (float64, error) {
	const op = "PValue"

	switch m.nullMethod {
	case Permutation:
		null, err := m.SampleNull()
		if err != nil {
			return 0, err
		}
		sort.Float64s(null)
		return 1 - stat.CDF(statistic, stat.Empirical, null, nil), nil
	case MMD1Gaussian:
		sigma, err := m.nullSigma(op)
		if err != nil {
			return 0, err
		}
		normal := distuv.Normal{Mu: 0, Sigma: sigma}
		return 1 - normal.CDF(statistic), nil
	default:
		return 0, errors.NewUnsupportedMethodError(op, m.nullMethod.String())
	}
}

// Threshold returns the rejection threshold for significance level alpha
// under the configured null approximation.
func (m *MMD) Threshold(alpha float64) (float64, error) {
	const op = "Threshold"

	if alpha <= 0 || alpha >= 1 {
		return 0, errors.NewValueError(op,
			fmt.Sprintf("significance level must lie in (0, 1), got %v", alpha))
	}

	switch m.nullMethod {
	case Permutation:
		null, err := m.SampleNull()
		if err != nil {
			return 0, err
		}
		sort.Float64s(null)
		return stat.Quantile(1-alpha, stat.Empirical, null, nil), nil
	case MMD1Gaussian:
		sigma, err := m.nullSigma(op)
		if err != nil {
			return 0, err
		}
		normal := distuv.Normal{Mu: 0, Sigma: sigma}
		return normal.Quantile(1 - alpha), nil
	default:
		return 0, errors.NewUnsupportedMethodError(op, m.nullMethod.String())
	}
}

// Perform runs the full two-sample test at significance level alpha and
// reports whether the null hypothesis of equal distributions is rejected.
func (m *MMD) Perform(alpha float64) (bool, error) {
	const op = "Perform"

	if alpha <= 0 || alpha >= 1 {
		return false, errors.NewValueError(op,
			fmt.Sprintf("significance level must lie in (0, 1), got %v", alpha))
	}

	observed, err := m.ComputeStatistic()
	if err != nil {
		return false, err
	}
	p, err := m.PValue(observed)
	if err != nil {
		return false, err
	}

	reject := p < alpha
	m.logger.Info("hypothesis test performed",
		log.OperationKey, log.OperationPerformTest,
		log.StatisticKey, observed,
		log.PValueKey, p,
		log.SignificanceLevelKey, alpha,
		"reject", reject)
	return reject, nil
}

// nullSigma estimates the standard deviation of the null distribution for
// the Gaussian approximation.
func (m *MMD) nullSigma(op string) (float64, error) {
	va, err := m.ComputeVariance()
	if err != nil {
		return 0, err
	}
	if va <= 0 {
		return 0, errors.NewValueError(op,
			fmt.Sprintf("variance estimate must be positive for the Gaussian approximation, got %v", va))
	}
	return math.Sqrt(va), nil
}
