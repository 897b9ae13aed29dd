package mmd

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/stattest/pkg/errors"
	"github.com/YuminosukeSato/stattest/pkg/log"
	"github.com/YuminosukeSato/stattest/selection"
)

// SelectKernel picks the best kernel from the candidate registry and installs
// it as the active test kernel.
//
// The source is put into training mode with the given split ratio for the
// duration of the run; the winning kernel is chosen on the training partition
// only. numRuns and alpha apply to cross-validation selection and are ignored
// by the other methods. weighted switches MaximizeMMD and MaximizePower to
// their weighted-combination variants and conflicts with the remaining
// methods. Train mode is switched off and the split ratio reset to zero
// before returning, so a following test streams the full data again.
func (m *MMD) SelectKernel(method KernelSelectionMethod, weighted bool, trainTestRatio float64, numRuns int, alpha float64) error {
	const op = "SelectKernel"

	if m.selectionReg.NumKernels() == 0 {
		return errors.NewEmptyRegistryError(op)
	}
	if math.IsNaN(trainTestRatio) || trainTestRatio < 0 || trainTestRatio >= 1 {
		return errors.NewValidationError("trainTestRatio", "must lie in [0, 1)", trainTestRatio)
	}
	switch method {
	case MedianHeuristic:
		if weighted {
			return errors.NewOptionConflictError(op, "weighted", "median heuristic selection")
		}
	case MaximizeCrossValidation:
		if weighted {
			return errors.NewOptionConflictError(op, "weighted", "cross-validation selection")
		}
		if numRuns < 1 {
			return errors.NewValueError(op,
				fmt.Sprintf("number of runs must be positive, got %d", numRuns))
		}
		if alpha <= 0 || alpha >= 1 {
			return errors.NewValueError(op,
				fmt.Sprintf("significance level must lie in (0, 1), got %v", alpha))
		}
	case MaximizeMMD, MaximizePower:
		// 重み付き・単独のどちらも可
	default:
		return errors.NewUnsupportedMethodError(op, method.String())
	}

	m.src.SetTrainTestRatio(trainTestRatio)
	m.src.SetTrainMode(true)
	defer func() {
		m.src.SetTrainMode(false)
		m.src.SetTrainTestRatio(0)
	}()

	var policy selection.Policy
	switch method {
	case MedianHeuristic:
		dist, err := m.computeDistance()
		if err != nil {
			return err
		}
		defer dist.Free()
		// 距離行列の計算後は分割を解除して全データに戻す
		m.src.SetTrainTestRatio(0)
		m.src.Reset()
		policy = selection.NewMedianHeuristic(m.selectionReg, dist)
	case MaximizeMMD:
		if weighted {
			policy = selection.NewWeightedMaxMeasure(m.selectionReg, m)
		} else {
			policy = selection.NewMaxMeasure(m.selectionReg, m)
		}
	case MaximizePower:
		if weighted {
			policy = selection.NewWeightedMaxTestPower(m.selectionReg, m)
		} else {
			policy = selection.NewMaxTestPower(m.selectionReg, m)
		}
	case MaximizeCrossValidation:
		policy = selection.NewMaxCrossValidation(m.selectionReg, m, numRuns, alpha)
	}

	res, err := policy.Select()
	if err != nil {
		return err
	}
	if res.Kernel == nil {
		return errors.NewValueError(op, "selection policy returned no kernel")
	}
	m.SetKernel(res.Kernel)

	fields := []any{
		log.OperationKey, log.OperationSelectKernel,
		log.SelectionMethodKey, method.String(),
		log.KernelCountKey, m.selectionReg.NumKernels(),
		log.TrainTestRatioKey, trainTestRatio,
	}
	if res.Weights != nil {
		fields = append(fields, "weights", res.Weights)
	}
	m.logger.Info("kernel selected", fields...)
	return nil
}
