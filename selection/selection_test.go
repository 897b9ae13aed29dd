package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/kernel"
)

// stubKernel is a selection-test fixture: it is never evaluated, only picked.
type stubKernel struct {
	name  string
	sigma float64
}

func (k *stubKernel) Bandwidth() float64             { return k.sigma }
func (k *stubKernel) Clone() kernel.Kernel           { return &stubKernel{name: k.name, sigma: k.sigma} }
func (k *stubKernel) Init(lhs, rhs mat.Matrix) error { return nil }
func (k *stubKernel) Matrix() (kernel.Matrix, error) { return kernel.Matrix{}, nil }
func (k *stubKernel) Release()                       {}

// stubEstimator feeds canned estimates to policies and records kernel swaps.
type stubEstimator struct {
	stats     []float64
	q         *mat.Dense
	nulls     []float64
	statByKey map[kernel.Kernel]float64
	active    kernel.Kernel
}

func (e *stubEstimator) SetKernel(k kernel.Kernel) {
	e.active = k
}

func (e *stubEstimator) ComputeStatistic() (float64, error) {
	if e.statByKey != nil {
		return e.statByKey[e.active], nil
	}
	return 0, nil
}

func (e *stubEstimator) ComputeStatisticAndQ() ([]float64, *mat.Dense, error) {
	return e.stats, e.q, nil
}

func (e *stubEstimator) SampleNull() ([]float64, error) {
	out := make([]float64, len(e.nulls))
	copy(out, e.nulls)
	return out, nil
}

func registryOf(kernels ...kernel.Kernel) *kernel.Registry {
	reg := kernel.NewRegistry()
	for _, k := range kernels {
		reg.PushBack(k)
	}
	return reg
}

func distanceMatrix(values [][]float64) kernel.Matrix {
	n := len(values)
	m := kernel.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, float32(values[i][j]))
		}
	}
	return m
}

func TestMedianHeuristicPicksClosestBandwidth(t *testing.T) {
	// 上三角の距離は {1,2,3,4,5,6}、経験分位の中央値は3
	dist := distanceMatrix([][]float64{
		{0, 1, 2, 3},
		{1, 0, 4, 5},
		{2, 4, 0, 6},
		{3, 5, 6, 0},
	})
	defer dist.Free()

	narrow := &stubKernel{name: "narrow", sigma: 0.5}
	fit := &stubKernel{name: "fit", sigma: 3.2}
	wide := &stubKernel{name: "wide", sigma: 50}

	p := NewMedianHeuristic(registryOf(narrow, fit, wide), dist)
	res, err := p.Select()
	require.NoError(t, err)
	assert.Same(t, kernel.Kernel(fit), res.Kernel)
	assert.Nil(t, res.Weights)
}

func TestMedianHeuristicValidation(t *testing.T) {
	dist := distanceMatrix([][]float64{{0, 1}, {1, 0}})
	defer dist.Free()

	_, err := NewMedianHeuristic(registryOf(), dist).Select()
	assert.Error(t, err, "empty registry")

	tiny := kernel.NewMatrix(1)
	defer tiny.Free()
	_, err = NewMedianHeuristic(registryOf(&stubKernel{sigma: 1}), tiny).Select()
	assert.Error(t, err, "distance matrix needs at least two samples")
}

func TestMaxMeasurePicksLargestStatistic(t *testing.T) {
	a := &stubKernel{name: "a", sigma: 1}
	b := &stubKernel{name: "b", sigma: 2}
	c := &stubKernel{name: "c", sigma: 3}

	est := &stubEstimator{stats: []float64{0.1, 0.9, 0.3}}
	res, err := NewMaxMeasure(registryOf(a, b, c), est).Select()
	require.NoError(t, err)
	assert.Same(t, kernel.Kernel(b), res.Kernel)
}

func TestMaxTestPowerUsesSignalToNoiseRatio(t *testing.T) {
	a := &stubKernel{name: "a", sigma: 1}
	b := &stubKernel{name: "b", sigma: 2}

	// aの統計量は大きいが分散も大きい：SN比ではbが勝つ
	q := mat.NewDense(2, 2, []float64{
		100, 0,
		0, 0.01,
	})
	est := &stubEstimator{stats: []float64{1.0, 0.5}, q: q}

	res, err := NewMaxTestPower(registryOf(a, b), est).Select()
	require.NoError(t, err)
	assert.Same(t, kernel.Kernel(b), res.Kernel)
}

func TestWeightedMaxMeasureWeightsFollowStatistics(t *testing.T) {
	a := &stubKernel{name: "a", sigma: 1}
	b := &stubKernel{name: "b", sigma: 2}

	est := &stubEstimator{stats: []float64{3, 1}}
	res, err := NewWeightedMaxMeasure(registryOf(a, b), est).Select()
	require.NoError(t, err)

	combined, ok := res.Kernel.(*kernel.Combined)
	require.True(t, ok)
	require.Len(t, res.Weights, 2)

	// 測度最大化の重みは統計量に比例する（単位共分散）
	assert.InDelta(t, 0.75, res.Weights[0], 1e-6)
	assert.InDelta(t, 0.25, res.Weights[1], 1e-6)
	assert.InDelta(t, res.Weights[0], combined.WeightAt(0), 1e-12)
}

func TestWeightedMaxTestPowerSolvesAgainstCovariance(t *testing.T) {
	a := &stubKernel{name: "a", sigma: 1}
	b := &stubKernel{name: "b", sigma: 2}

	q := mat.NewDense(2, 2, []float64{
		2, 0,
		0, 1,
	})
	est := &stubEstimator{stats: []float64{2, 2}, q: q}

	res, err := NewWeightedMaxTestPower(registryOf(a, b), est).Select()
	require.NoError(t, err)
	require.Len(t, res.Weights, 2)

	// w ∝ Q⁻¹·stat = (1, 2) → 正規化で (1/3, 2/3)
	assert.InDelta(t, 1.0/3, res.Weights[0], 1e-4)
	assert.InDelta(t, 2.0/3, res.Weights[1], 1e-4)
}

func TestWeightedSelectionRejectsNonPositiveStatistics(t *testing.T) {
	est := &stubEstimator{stats: []float64{-1, -2}}
	_, err := NewWeightedMaxMeasure(registryOf(&stubKernel{sigma: 1}, &stubKernel{sigma: 2}), est).Select()
	assert.Error(t, err, "all weights clamp to zero")
}

func TestMaxCrossValidationPrefersHigherRejectionRate(t *testing.T) {
	weak := &stubKernel{name: "weak", sigma: 1}
	strong := &stubKernel{name: "strong", sigma: 2}

	// 帰無分布は常に{0..9}：strongの統計量だけが分位点を超える
	est := &stubEstimator{
		nulls: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		statByKey: map[kernel.Kernel]float64{
			weak:   1,
			strong: 100,
		},
	}

	p := NewMaxCrossValidation(registryOf(weak, strong), est, 3, 0.1)
	res, err := p.Select()
	require.NoError(t, err)
	assert.Same(t, kernel.Kernel(strong), res.Kernel)
}

func TestMaxCrossValidationValidation(t *testing.T) {
	reg := registryOf(&stubKernel{sigma: 1})
	est := &stubEstimator{nulls: []float64{0, 1}}

	_, err := NewMaxCrossValidation(registryOf(), est, 3, 0.1).Select()
	assert.Error(t, err, "empty registry")

	_, err = NewMaxCrossValidation(reg, est, 0, 0.1).Select()
	assert.Error(t, err, "non-positive run count")

	_, err = NewMaxCrossValidation(reg, est, 3, 1.0).Select()
	assert.Error(t, err, "alpha outside (0, 1)")
}
