package mmd

import (
	"fmt"

	"github.com/YuminosukeSato/stattest/core/online"
	"github.com/YuminosukeSato/stattest/data"
	"github.com/YuminosukeSato/stattest/pkg/errors"
	"github.com/YuminosukeSato/stattest/pkg/log"
)

// SampleNull builds an empirical null distribution of the configured
// replicate count in a single pass over the stream.
//
// Each burst's kernel matrices are computed once; every replicate then
// re-runs the within-block permutation job over all blocks with fresh random
// relabelings, folding its per-block scalars into the replicate's own running
// mean. Every replicate is normalized like the statistic.
func (m *MMD) SampleNull() ([]float64, error) {
	const op = "SampleNull"

	kern, err := m.activeKernel(op)
	if err != nil {
		return nil, err
	}

	r := m.numNullSamples
	if r <= 0 {
		return nil, errors.NewValueError(op,
			fmt.Sprintf("number of null samples must be positive, got %d", r))
	}

	bx := m.src.BlockSizeAt(data.DistP)
	by := m.src.BlockSizeAt(data.DistQ)
	if err := validateBlockShape(op, m.statType, bx, by); err != nil {
		return nil, err
	}

	mgr := m.manager()
	defer mgr.Done()
	mgr.EnqueueJob(newPermutationJob(m.statType, bx, m.rng, &m.rngMu))

	accs := make([]online.Mean, r)

	m.src.Start()
	defer m.src.End()

	bursts := 0
	for {
		b := m.src.Next()
		if b.Empty() {
			break
		}

		blocks, err := mergeBlocks(b)
		if err != nil {
			return nil, err
		}
		if err := computeKernelMatrices(kern, blocks, mgr); err != nil {
			return nil, err
		}
		if m.gpu {
			mgr.UseGPU()
		} else {
			mgr.UseCPU()
		}

		for j := 0; j < r; j++ {
			if err := mgr.Compute(); err != nil {
				return nil, err
			}
			res := mgr.Result(0)
			for _, v := range res {
				accs[j].Update(float64(v))
			}
		}

		bursts++
		m.logger.Debug("burst folded",
			log.OperationKey, log.OperationSampleNull,
			log.BurstsKey, bursts,
			log.BlocksKey, b.NumBlocks(),
			log.NullSamplesKey, r)
	}

	out := make([]float64, r)
	for j := range out {
		out[j] = m.norm.NormalizeStatistic(accs[j].Value())
		if err := errors.CheckScalar(op, out[j], j); err != nil {
			return nil, err
		}
	}

	m.logger.Debug("null distribution sampled",
		log.OperationKey, log.OperationSampleNull,
		log.NullSamplesKey, r,
		log.BurstsKey, bursts)
	return out, nil
}
