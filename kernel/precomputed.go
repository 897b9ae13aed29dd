package kernel

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// Precomputed is a kernel whose Gram matrix was computed elsewhere, for
// example offline or by a selection policy over the full training data.
//
// A Precomputed kernel can sit in a registry slot and be evaluated like any
// other kernel, but it cannot serve as the template for streaming evaluation:
// its matrix is fixed and cannot be recomputed for fresh bursts. The engine
// rejects it with a PrecomputedTemplateError before touching any stream.
type Precomputed struct {
	m Matrix
}

// NewPrecomputed wraps a fixed kernel matrix. Ownership of the matrix
// transfers to the Precomputed kernel; callers must not Free it.
func NewPrecomputed(m Matrix) *Precomputed {
	return &Precomputed{m: m}
}

// NewPrecomputedFrom converts a float64 kernel matrix to the float32
// representation used by the engine. The matrix must be square and free of
// NaN/Inf entries.
func NewPrecomputedFrom(km mat.Matrix) (*Precomputed, error) {
	r, c := km.Dims()
	if r != c {
		return nil, errors.NewDimensionError("NewPrecomputedFrom", r, c, 1)
	}

	m := NewMatrix(r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, float32(km.At(i, j)))
		}
	}

	if err := errors.CheckMatrix32("NewPrecomputedFrom", m.At, r); err != nil {
		m.Free()
		return nil, err
	}

	errors.Warn(errors.NewDataConversionWarning("float64", "float32", "kernel matrices are held in single precision"))

	return &Precomputed{m: m}, nil
}

// Clone returns the same instance. The matrix is immutable, so sharing is
// safe across concurrent readers.
func (p *Precomputed) Clone() Kernel {
	return p
}

// Init validates that the bound data matches the fixed matrix order.
// The matrix itself is never recomputed.
func (p *Precomputed) Init(lhs, rhs mat.Matrix) error {
	n, _ := lhs.Dims()
	nr, _ := rhs.Dims()
	if n != nr {
		return errors.NewDimensionError("Precomputed.Init", n, nr, 0)
	}
	if n != p.m.Order() {
		return errors.NewDimensionError("Precomputed.Init", p.m.Order(), n, 0)
	}
	return nil
}

// Matrix returns a view of the wrapped Gram matrix. The view shares the
// kernel's buffer and stays valid until Destroy; Free on it is a no-op, so
// the usual caller-frees contract holds.
func (p *Precomputed) Matrix() (Matrix, error) {
	if p.m.IsEmpty() {
		return Matrix{}, errors.WithStack(errors.ErrEmptyData)
	}
	return Matrix{data: p.m.data, order: p.m.order}, nil
}

// Release is a no-op: a precomputed kernel has no data binding to drop.
func (p *Precomputed) Release() {}

// Destroy frees the wrapped matrix buffer. The kernel must not be used
// afterwards.
func (p *Precomputed) Destroy() {
	p.m.Free()
	p.m = Matrix{}
}
