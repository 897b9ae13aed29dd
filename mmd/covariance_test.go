package mmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/core/online"
	"github.com/YuminosukeSato/stattest/data"
	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// referenceQ recomputes the per-kernel statistic means and the pair-product
// covariance accumulation outside the engine, block by block in stream order.
func referenceQ(t *testing.T, p, q *mat.Dense, bx int, kernels []kernel.Kernel, norm Normalizer) ([]float64, *mat.Dense) {
	t.Helper()

	rows, _ := p.Dims()
	numBlocks := rows / bx
	numK := len(kernels)

	perBlock := make([][]float64, numK)
	for ki, k := range kernels {
		perBlock[ki] = make([]float64, numBlocks)
		for b := 0; b < numBlocks; b++ {
			_, cols := p.Dims()
			var merged mat.Dense
			merged.Stack(p.Slice(b*bx, (b+1)*bx, 0, cols), q.Slice(b*bx, (b+1)*bx, 0, cols))

			clone := k.Clone()
			require.NoError(t, clone.Init(&merged, &merged))
			km, err := clone.Matrix()
			require.NoError(t, err)
			perBlock[ki][b] = float64(float32(blockStatistic(UnbiasedFull, km, bx, nil)))
			km.Free()
			clone.Release()
		}
	}

	stats := make([]float64, numK)
	for ki := range stats {
		var acc online.Mean
		for _, v := range perBlock[ki] {
			acc.Update(v)
		}
		stats[ki] = norm.NormalizeStatistic(acc.Value())
	}

	qm := mat.NewDense(numK, numK, nil)
	for i := 0; i < numK; i++ {
		for j := 0; j <= i; j++ {
			var acc online.Mean
			for pair := 0; pair < numBlocks/2; pair++ {
				di := perBlock[i][2*pair] - perBlock[i][2*pair+1]
				dj := perBlock[j][2*pair] - perBlock[j][2*pair+1]
				acc.Update(di * dj)
			}
			qm.Set(i, j, acc.Value())
			qm.Set(j, i, acc.Value())
		}
	}
	return stats, qm
}

func TestComputeStatisticAndQMatchesReference(t *testing.T) {
	const rows, bx = 8, 2
	p := patternMatrix(rows, 2, 0)
	q := patternMatrix(rows, 2, 1.5)

	src, err := data.NewMatrixSource(p, q,
		data.WithSourceBlockSize(bx, bx),
		data.WithSourceBlocksPerBurst(2),
	)
	require.NoError(t, err)

	est, err := NewLinearTime(src)
	require.NoError(t, err)
	kernels := []kernel.Kernel{
		&linKernel{},
		&gaussKernel{sigma: 1},
		&gaussKernel{sigma: 3},
	}
	for _, k := range kernels {
		require.NoError(t, est.AddKernel(k))
	}

	stats, qm, err := est.ComputeStatisticAndQ()
	require.NoError(t, err)
	require.Len(t, stats, len(kernels))

	wantStats, wantQ := referenceQ(t, p, q, bx, kernels, est.norm)
	for i := range stats {
		assert.InDelta(t, wantStats[i], stats[i], 1e-12, "statistic of kernel %d", i)
	}
	for i := 0; i < len(kernels); i++ {
		for j := 0; j < len(kernels); j++ {
			assert.InDelta(t, wantQ.At(i, j), qm.At(i, j), 1e-12, "Q(%d,%d)", i, j)
		}
	}
}

func TestQIsSymmetric(t *testing.T) {
	src := newTestSource(t, 12, 2, data.WithSourceBlockSize(3, 3), data.WithSourceBlocksPerBurst(4))
	est, err := NewBTest(src)
	require.NoError(t, err)
	require.NoError(t, est.AddKernel(&gaussKernel{sigma: 0.5}))
	require.NoError(t, est.AddKernel(&gaussKernel{sigma: 2}))
	require.NoError(t, est.AddKernel(&linKernel{}))

	_, qm, err := est.ComputeStatisticAndQ()
	require.NoError(t, err)

	n, _ := qm.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			assert.Equal(t, qm.At(i, j), qm.At(j, i), "Q(%d,%d) vs Q(%d,%d)", i, j, j, i)
		}
	}
	for i := 0; i < n; i++ {
		assert.GreaterOrEqual(t, qm.At(i, i), 0.0, "diagonal is a mean of squares")
	}
}

func TestComputeStatisticAndQRequiresKernels(t *testing.T) {
	est, err := New(newTestSource(t, 8, 1), WithNormalizer(unitNorm{}))
	require.NoError(t, err)

	_, _, err = est.ComputeStatisticAndQ()
	require.Error(t, err)

	var rerr *errors.EmptyRegistryError
	assert.True(t, errors.As(err, &rerr), "want EmptyRegistryError, got %v", err)
}

func TestOddBurstFailsWithoutCorruptingFollowingRuns(t *testing.T) {
	// 6サンプル・ブロックサイズ2で1パス3ブロック：奇数バーストで失敗する
	oddSrc := newTestSource(t, 6, 1, data.WithSourceBlockSize(2, 2), data.WithSourceBlocksPerBurst(3))
	evenSrc := newTestSource(t, 8, 1, data.WithSourceBlockSize(2, 2), data.WithSourceBlocksPerBurst(2))

	est, err := NewBTest(evenSrc)
	require.NoError(t, err)
	require.NoError(t, est.AddKernel(&gaussKernel{sigma: 1}))

	stats1, q1, err := est.ComputeStatisticAndQ()
	require.NoError(t, err)

	bad, err := NewBTest(oddSrc)
	require.NoError(t, err)
	require.NoError(t, bad.AddKernel(&gaussKernel{sigma: 1}))
	_, _, err = bad.ComputeStatisticAndQ()
	require.Error(t, err)

	var serr *errors.BlockShapeError
	require.True(t, errors.As(err, &serr), "want BlockShapeError, got %v", err)
	assert.Equal(t, 3, serr.NumBlocks, "the offending block count is reported")

	// 失敗した呼び出しは健全なインスタンスの再実行に影響しない
	stats2, q2, err := est.ComputeStatisticAndQ()
	require.NoError(t, err)
	assert.Equal(t, stats1, stats2)
	assert.True(t, mat.Equal(q1, q2))
}
