package kernel

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// dotKernel is a test fixture computing scaled dot products.
type dotKernel struct {
	scale    float64
	lhs, rhs mat.Matrix
}

func (k *dotKernel) Clone() Kernel {
	return &dotKernel{scale: k.scale}
}

func (k *dotKernel) Init(lhs, rhs mat.Matrix) error {
	_, dl := lhs.Dims()
	_, dr := rhs.Dims()
	if dl != dr {
		return errors.NewDimensionError("dotKernel.Init", dl, dr, 1)
	}
	k.lhs, k.rhs = lhs, rhs
	return nil
}

func (k *dotKernel) Matrix() (Matrix, error) {
	if k.lhs == nil || k.rhs == nil {
		return Matrix{}, errors.NewKernelNotSetError("dotKernel.Matrix")
	}
	n, d := k.lhs.Dims()
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for c := 0; c < d; c++ {
				sum += k.lhs.At(i, c) * k.rhs.At(j, c)
			}
			m.Set(i, j, float32(k.scale*sum))
		}
	}
	return m, nil
}

func (k *dotKernel) Release() {
	k.lhs, k.rhs = nil, nil
}

func TestPrecomputedMatrixView(t *testing.T) {
	base := NewMatrix(2)
	base.Set(0, 0, 1)
	base.Set(0, 1, 2)
	base.Set(1, 0, 2)
	base.Set(1, 1, 3)

	p := NewPrecomputed(base)
	defer p.Destroy()

	m, err := p.Matrix()
	if err != nil {
		t.Fatal(err)
	}
	if m.At(0, 1) != 2 {
		t.Errorf("At(0,1) = %v, want 2", m.At(0, 1))
	}

	// Free on the view must not disturb the owned matrix
	m.Free()
	m2, err := p.Matrix()
	if err != nil {
		t.Fatal(err)
	}
	if m2.At(1, 1) != 3 {
		t.Error("view Free corrupted the precomputed matrix")
	}
}

func TestPrecomputedInitValidatesOrder(t *testing.T) {
	base := NewMatrix(3)
	p := NewPrecomputed(base)
	defer p.Destroy()

	good := mat.NewDense(3, 2, nil)
	if err := p.Init(good, good); err != nil {
		t.Errorf("Init with matching order: unexpected error %v", err)
	}

	bad := mat.NewDense(4, 2, nil)
	if err := p.Init(bad, bad); err == nil {
		t.Error("Init with mismatched order should fail")
	}
}

func TestPrecomputedCloneShares(t *testing.T) {
	base := NewMatrix(2)
	base.Set(0, 0, 5)
	p := NewPrecomputed(base)
	defer p.Destroy()

	c := p.Clone()
	m, err := c.Matrix()
	if err != nil {
		t.Fatal(err)
	}
	if m.At(0, 0) != 5 {
		t.Error("clone should expose the same fixed matrix")
	}
}

func TestNewPrecomputedFrom(t *testing.T) {
	t.Run("square matrix converts", func(t *testing.T) {
		km := mat.NewDense(2, 2, []float64{1, 0.5, 0.5, 1})
		p, err := NewPrecomputedFrom(km)
		if err != nil {
			t.Fatal(err)
		}
		defer p.Destroy()

		m, err := p.Matrix()
		if err != nil {
			t.Fatal(err)
		}
		if m.At(0, 1) != 0.5 {
			t.Errorf("At(0,1) = %v, want 0.5", m.At(0, 1))
		}
	})

	t.Run("non-square rejected", func(t *testing.T) {
		km := mat.NewDense(2, 3, nil)
		if _, err := NewPrecomputedFrom(km); err == nil {
			t.Error("expected error for non-square matrix")
		}
	})

	t.Run("NaN rejected", func(t *testing.T) {
		km := mat.NewDense(2, 2, []float64{1, math.NaN(), 0, 1})
		if _, err := NewPrecomputedFrom(km); err == nil {
			t.Error("expected error for NaN entry")
		}
	})
}

func TestCombinedWeightedSum(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 0, 0, 2})

	c, err := NewCombined(
		[]Kernel{&dotKernel{scale: 1}, &dotKernel{scale: 3}},
		[]float64{0.25, 0.5},
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Init(x, x); err != nil {
		t.Fatal(err)
	}
	defer c.Release()

	m, err := c.Matrix()
	if err != nil {
		t.Fatal(err)
	}
	defer m.Free()

	// Combined = 0.25*dot + 0.5*(3*dot) = 1.75*dot
	dots := [][]float64{{1, 0}, {0, 4}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := float32(1.75 * dots[i][j])
			if got := m.At(i, j); got != want {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestCombinedDefaultWeights(t *testing.T) {
	c, err := NewCombined([]Kernel{&dotKernel{scale: 1}, &dotKernel{scale: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < c.NumKernels(); i++ {
		if c.WeightAt(i) != 1 {
			t.Errorf("WeightAt(%d) = %v, want 1", i, c.WeightAt(i))
		}
	}
}

func TestCombinedValidation(t *testing.T) {
	tests := []struct {
		name    string
		kernels []Kernel
		weights []float64
	}{
		{"empty kernels", nil, nil},
		{"weight length mismatch", []Kernel{&dotKernel{scale: 1}}, []float64{1, 2}},
		{"NaN weight", []Kernel{&dotKernel{scale: 1}}, []float64{math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCombined(tt.kernels, tt.weights); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCombinedCloneIndependence(t *testing.T) {
	orig, err := NewCombined([]Kernel{&dotKernel{scale: 2}}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}

	clone := orig.Clone().(*Combined)
	x := mat.NewDense(1, 1, []float64{3})
	if err := clone.Init(x, x); err != nil {
		t.Fatal(err)
	}

	// The original's member must stay unbound
	if orig.KernelAt(0).(*dotKernel).lhs != nil {
		t.Error("Clone should not share member kernel state")
	}
}
