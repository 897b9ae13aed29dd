package online

import (
	"math"
	"math/rand/v2"
	"testing"
)

func arithmeticMean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func TestMean(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		want      float64
		tolerance float64
	}{
		{
			name:      "single value",
			values:    []float64{3.5},
			want:      3.5,
			tolerance: 0,
		},
		{
			name:      "small integers",
			values:    []float64{1, 2, 3, 4, 5},
			want:      3.0,
			tolerance: 1e-12,
		},
		{
			name:      "mixed signs",
			values:    []float64{-2.5, 2.5, -1.0, 1.0},
			want:      0.0,
			tolerance: 1e-12,
		},
		{
			name:      "large offset",
			values:    []float64{1e9 + 1, 1e9 + 2, 1e9 + 3},
			want:      1e9 + 2,
			tolerance: 1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Mean
			for _, x := range tt.values {
				m.Update(x)
			}
			if got := m.Value(); math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
			if got := m.Count(); got != int64(len(tt.values)) {
				t.Errorf("Count() = %d, want %d", got, len(tt.values))
			}
		})
	}
}

func TestMeanZeroValue(t *testing.T) {
	var m Mean
	if m.Value() != 0 {
		t.Errorf("zero value Mean reports %v, want 0", m.Value())
	}
	if m.Count() != 0 {
		t.Errorf("zero value Count reports %d, want 0", m.Count())
	}
}

// The running mean must agree with the arithmetic mean regardless of the
// order the observations arrive in.
func TestMeanOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 13))
	xs := make([]float64, 1000)
	for i := range xs {
		xs[i] = rng.NormFloat64()*10 + 2
	}
	want := arithmeticMean(xs)

	for trial := 0; trial < 5; trial++ {
		rng.Shuffle(len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })
		var m Mean
		for _, x := range xs {
			m.Update(x)
		}
		if math.Abs(m.Value()-want) > 1e-9 {
			t.Fatalf("trial %d: Value() = %v, want %v", trial, m.Value(), want)
		}
	}
}

func TestMeanReset(t *testing.T) {
	var m Mean
	m.Update(10)
	m.Update(20)
	m.Reset()
	if m.Count() != 0 || m.Value() != 0 {
		t.Errorf("after Reset: Count()=%d Value()=%v, want zeros", m.Count(), m.Value())
	}
	m.Update(4)
	if m.Value() != 4 {
		t.Errorf("after Reset+Update: Value()=%v, want 4", m.Value())
	}
}

// TestVarianceOnePassTrace pins the exact one-pass recurrence: the cross term
// uses the updated mean. The reference trace below is computed with the
// documented update order, not with the two-pass textbook formula.
func TestVarianceOnePassTrace(t *testing.T) {
	xs := []float64{2, -1, 0.5, 4, 4}

	var mean, m2 float64
	var n int64
	var v Variance
	for i, x := range xs {
		delta := x - mean
		n++
		mean += delta / float64(n)
		m2 += delta * (x - mean)

		v.Update(x)
		if v.Mean() != mean {
			t.Fatalf("step %d: Mean() = %v, want %v", i, v.Mean(), mean)
		}
		if v.M2() != m2 {
			t.Fatalf("step %d: M2() = %v, want %v", i, v.M2(), m2)
		}
	}
	if v.Count() != int64(len(xs)) {
		t.Errorf("Count() = %d, want %d", v.Count(), len(xs))
	}
}

func TestVarianceMatchesTwoPassOnBenignData(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	xs := make([]float64, 500)
	for i := range xs {
		xs[i] = rng.NormFloat64()
	}

	var v Variance
	for _, x := range xs {
		v.Update(x)
	}

	mean := arithmeticMean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	twoPass := ss / float64(len(xs)-1)

	if math.Abs(v.SampleVariance()-twoPass) > 1e-9 {
		t.Errorf("SampleVariance() = %v, two-pass reference %v", v.SampleVariance(), twoPass)
	}
	if math.Abs(v.Mean()-mean) > 1e-9 {
		t.Errorf("Mean() = %v, reference %v", v.Mean(), mean)
	}
}

func TestVarianceSmallCounts(t *testing.T) {
	var v Variance
	if v.SampleVariance() != 0 {
		t.Errorf("empty SampleVariance() = %v, want 0", v.SampleVariance())
	}
	v.Update(3)
	if v.SampleVariance() != 0 {
		t.Errorf("n=1 SampleVariance() = %v, want 0", v.SampleVariance())
	}
	if v.M2() != 0 {
		t.Errorf("n=1 M2() = %v, want 0", v.M2())
	}
}

func TestVarianceReset(t *testing.T) {
	var v Variance
	v.Update(1)
	v.Update(9)
	v.Reset()
	if v.Count() != 0 || v.Mean() != 0 || v.M2() != 0 {
		t.Errorf("after Reset: Count()=%d Mean()=%v M2()=%v, want zeros", v.Count(), v.Mean(), v.M2())
	}
}
