package mmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/stattest/data"
)

func TestSampleNullLengthAndDeterminism(t *testing.T) {
	const replicates = 25

	src := newTestSource(t, 8, 1, data.WithSourceBlockSize(2, 2), data.WithSourceBlocksPerBurst(1))
	est, err := NewBTest(src,
		WithNumNullSamples(replicates),
		WithRandomState(42),
	)
	require.NoError(t, err)
	est.SetKernel(&gaussKernel{sigma: 1})

	null1, err := est.SampleNull()
	require.NoError(t, err)
	require.Len(t, null1, replicates)

	// 1バースト1ブロックなら置換の引き当て順も決定的になる
	est.SetRandomState(42)
	null2, err := est.SampleNull()
	require.NoError(t, err)
	assert.Equal(t, null1, null2)
}

func TestSampleNullConstantKernelIsExactlyZero(t *testing.T) {
	// 定数カーネルではどの置換でも統計量が恒等的にゼロになる：
	// 各レプリカは全ブロックにわたるゼロの平均、正規化してもゼロのまま
	src := newTestSource(t, 8, 3, data.WithSourceBlockSize(2, 2), data.WithSourceBlocksPerBurst(2))
	est, err := NewLinearTime(src, WithNumNullSamples(10), WithRandomState(1))
	require.NoError(t, err)
	est.SetKernel(&constKernel{c: 2.5})

	null, err := est.SampleNull()
	require.NoError(t, err)
	require.Len(t, null, 10)
	for j, v := range null {
		assert.Equal(t, 0.0, v, "replicate %d", j)
	}
}

func TestSampleNullValidation(t *testing.T) {
	src := newTestSource(t, 8, 1)

	est, err := NewLinearTime(src, WithNumNullSamples(0))
	require.NoError(t, err)
	est.SetKernel(&linKernel{})
	_, err = est.SampleNull()
	assert.Error(t, err, "non-positive replicate count is rejected")

	est2, err := NewLinearTime(src)
	require.NoError(t, err)
	_, err = est2.SampleNull()
	assert.Error(t, err, "a kernel is required")
}
