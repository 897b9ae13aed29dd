package mmd

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/compute"
	"github.com/YuminosukeSato/stattest/core/parallel"
	"github.com/YuminosukeSato/stattest/data"
	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// mergeBlocks stacks each P-block of a burst over its Q-block, producing one
// merged feature block per index. Merges fan out over the block index; output
// slot i always corresponds to input index i.
func mergeBlocks(b data.Burst) ([]*mat.Dense, error) {
	if len(b.P) != len(b.Q) {
		return nil, errors.NewValidationError("burst",
			"block sequences of both distributions must have equal length",
			[2]int{len(b.P), len(b.Q)})
	}

	merged := make([]*mat.Dense, b.NumBlocks())
	err := parallel.TryForEach(b.NumBlocks(), func(i int) (err error) {
		defer errors.Recover(&err, "block merge")
		var m mat.Dense
		m.Stack(b.P[i], b.Q[i])
		merged[i] = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// computeKernelMatrices fills the manager's data slots with one kernel matrix
// per merged block, cloning the template kernel per block so no kernel state
// is shared across parallel tasks. Any failed block aborts the whole burst;
// partial accumulation would silently bias the running estimates.
func computeKernelMatrices(tmpl kernel.Kernel, blocks []*mat.Dense, mgr compute.Manager) error {
	mgr.NumData(len(blocks))
	return parallel.TryForEach(len(blocks), func(i int) error {
		if err := computeBlockMatrix(tmpl, blocks[i], i, mgr); err != nil {
			return errors.NewComputationError(i, err)
		}
		return nil
	})
}

func computeBlockMatrix(tmpl kernel.Kernel, blk mat.Matrix, i int, mgr compute.Manager) (err error) {
	defer errors.Recover(&err, "kernel matrix computation")

	clone := tmpl.Clone()
	defer clone.Release()
	if err := clone.Init(blk, blk); err != nil {
		return err
	}
	km, err := clone.Matrix()
	if err != nil {
		return err
	}
	mgr.SetData(i, km)
	return nil
}

// runBurst pushes one burst through the merge, kernel matrix and job
// evaluation stages. Results are read from the manager afterwards.
func (m *MMD) runBurst(b data.Burst, tmpl kernel.Kernel, mgr compute.Manager) error {
	blocks, err := mergeBlocks(b)
	if err != nil {
		return err
	}
	if err := computeKernelMatrices(tmpl, blocks, mgr); err != nil {
		return err
	}
	if m.gpu {
		mgr.UseGPU()
	} else {
		mgr.UseCPU()
	}
	return mgr.Compute()
}
