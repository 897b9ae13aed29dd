package mmd

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/core/parallel"
	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
	"github.com/YuminosukeSato/stattest/pkg/log"
)

// computeDistance builds the pairwise Euclidean distance matrix over the
// merged samples of both distributions, for the median-heuristic selection
// policy. The source is switched to non-blockwise mode so a single burst
// carries one whole-partition block per distribution, and the previous mode
// is restored afterwards. The caller owns the returned matrix and must Free
// it.
func (m *MMD) computeDistance() (kernel.Matrix, error) {
	const op = "ComputeDistance"

	wasBlockwise := m.src.Blockwise()
	m.src.SetBlockwise(false)
	defer m.src.SetBlockwise(wasBlockwise)

	m.src.Start()
	defer m.src.End()

	b := m.src.Next()
	if b.Empty() {
		return kernel.Matrix{}, errors.Wrap(errors.ErrEmptyData, op+": stream yielded no samples")
	}

	var merged mat.Dense
	merged.Stack(b.P[0], b.Q[0])
	n, _ := merged.Dims()

	dm := kernel.NewMatrix(n)
	parallel.ForEach(n, func(i int) {
		xi := merged.RawRowView(i)
		for j := i + 1; j < n; j++ {
			d := float32(floats.Distance(xi, merged.RawRowView(j), 2))
			dm.Set(i, j, d)
			dm.Set(j, i, d)
		}
	})

	m.logger.Debug("distance matrix computed",
		log.OperationKey, log.OperationComputeDistance,
		log.SamplesKey, n)
	return dm, nil
}
