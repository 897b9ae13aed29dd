package mmd

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/core/online"
	"github.com/YuminosukeSato/stattest/data"
	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
	"github.com/YuminosukeSato/stattest/pkg/log"
)

// ComputeStatisticAndQ streams the full source once for every candidate
// kernel, returning the normalized per-kernel statistic vector and the
// symmetric covariance matrix Q over kernel pairs.
//
// Q(i,j) is the running mean, over adjacent block pairs (2k, 2k+1), of the
// product of the two kernels' statistic differences across the pair. Only the
// lower triangle is accumulated; the upper triangle is mirrored from it.
// Bursts must carry an even number of blocks so every block has a partner.
func (m *MMD) ComputeStatisticAndQ() ([]float64, *mat.Dense, error) {
	const op = "ComputeStatisticAndQ"

	numK := m.selectionReg.NumKernels()
	if numK == 0 {
		return nil, nil, errors.NewEmptyRegistryError(op)
	}
	for i := 0; i < numK; i++ {
		k := m.selectionReg.KernelAt(i)
		if k == nil {
			return nil, nil, errors.NewKernelNotSetError(op)
		}
		if _, ok := k.(*kernel.Precomputed); ok {
			return nil, nil, errors.NewPrecomputedTemplateError(i)
		}
	}

	bx := m.src.BlockSizeAt(data.DistP)
	by := m.src.BlockSizeAt(data.DistQ)
	if err := validateBlockShape(op, m.statType, bx, by); err != nil {
		return nil, nil, err
	}

	mgr := m.manager()
	defer mgr.Done()
	mgr.EnqueueJob(newStatisticJob(m.statType, bx))

	statAccs := make([]online.Mean, numK)
	// 下三角のみ保持する。qAccs[i][j] は i >= j のセル。
	qAccs := make([][]online.Mean, numK)
	for i := range qAccs {
		qAccs[i] = make([]online.Mean, i+1)
	}

	m.src.Start()
	defer m.src.End()

	bursts := 0
	for {
		b := m.src.Next()
		if b.Empty() {
			break
		}
		n := b.NumBlocks()
		if n%2 != 0 {
			return nil, nil, errors.NewBlockShapeError(op, n)
		}

		blocks, err := mergeBlocks(b)
		if err != nil {
			return nil, nil, err
		}

		results := make([][]float32, numK)
		for ki := 0; ki < numK; ki++ {
			if err := computeKernelMatrices(m.selectionReg.KernelAt(ki), blocks, mgr); err != nil {
				return nil, nil, err
			}
			if m.gpu {
				mgr.UseGPU()
			} else {
				mgr.UseCPU()
			}
			if err := mgr.Compute(); err != nil {
				return nil, nil, err
			}
			res := mgr.Result(0)
			results[ki] = make([]float32, len(res))
			copy(results[ki], res)
		}

		for ki := range results {
			for _, v := range results[ki] {
				statAccs[ki].Update(float64(v))
			}
		}
		for i := 0; i < numK; i++ {
			for j := 0; j <= i; j++ {
				for pair := 0; pair < n/2; pair++ {
					di := float64(results[i][2*pair]) - float64(results[i][2*pair+1])
					dj := float64(results[j][2*pair]) - float64(results[j][2*pair+1])
					qAccs[i][j].Update(di * dj)
				}
			}
		}

		bursts++
		m.logger.Debug("burst folded",
			log.OperationKey, log.OperationComputeQ,
			log.BurstsKey, bursts,
			log.BlocksKey, n,
			log.KernelCountKey, numK)
	}

	stats := make([]float64, numK)
	for i := range stats {
		stats[i] = m.norm.NormalizeStatistic(statAccs[i].Value())
	}
	if err := errors.CheckNumericalStability(op, stats, 0); err != nil {
		return nil, nil, err
	}

	q := mat.NewDense(numK, numK, nil)
	for i := 0; i < numK; i++ {
		for j := 0; j <= i; j++ {
			v := qAccs[i][j].Value()
			q.Set(i, j, v)
			q.Set(j, i, v)
		}
	}
	if err := errors.CheckMatrix(op, q, numK, numK, 0); err != nil {
		return nil, nil, err
	}

	return stats, q, nil
}
