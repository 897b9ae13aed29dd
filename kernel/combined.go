package kernel

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// Combined is a weighted sum of member kernels evaluated on the same data.
// Weighted kernel selection returns its winner as a Combined kernel over the
// candidate registry.
type Combined struct {
	kernels []Kernel
	weights []float64
}

// NewCombined builds a weighted-sum kernel. A nil weights slice assigns unit
// weight to every member.
func NewCombined(kernels []Kernel, weights []float64) (*Combined, error) {
	if len(kernels) == 0 {
		return nil, errors.NewValidationError("kernels", "must not be empty", len(kernels))
	}
	if weights == nil {
		weights = make([]float64, len(kernels))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(kernels) {
		return nil, errors.NewDimensionError("NewCombined", len(kernels), len(weights), 0)
	}
	if err := errors.CheckNumericalStability("NewCombined", weights, 0); err != nil {
		return nil, err
	}

	ks := make([]Kernel, len(kernels))
	copy(ks, kernels)
	ws := make([]float64, len(weights))
	copy(ws, weights)

	return &Combined{kernels: ks, weights: ws}, nil
}

// NumKernels returns the number of member kernels.
func (c *Combined) NumKernels() int {
	return len(c.kernels)
}

// KernelAt returns the i-th member kernel.
func (c *Combined) KernelAt(i int) Kernel {
	return c.kernels[i]
}

// WeightAt returns the weight of the i-th member kernel.
func (c *Combined) WeightAt(i int) float64 {
	return c.weights[i]
}

// Weights returns a copy of the member weights.
func (c *Combined) Weights() []float64 {
	ws := make([]float64, len(c.weights))
	copy(ws, c.weights)
	return ws
}

// Clone returns a Combined kernel over clones of every member.
func (c *Combined) Clone() Kernel {
	ks := make([]Kernel, len(c.kernels))
	for i, k := range c.kernels {
		ks[i] = k.Clone()
	}
	ws := make([]float64, len(c.weights))
	copy(ws, c.weights)
	return &Combined{kernels: ks, weights: ws}
}

// Init binds every member kernel to the feature blocks.
func (c *Combined) Init(lhs, rhs mat.Matrix) error {
	for i, k := range c.kernels {
		if err := k.Init(lhs, rhs); err != nil {
			return errors.Wrapf(err, "combined kernel member %d", i)
		}
	}
	return nil
}

// Matrix computes the weighted sum of the member Gram matrices.
// The result is a fresh pooled matrix owned by the caller.
func (c *Combined) Matrix() (Matrix, error) {
	var out Matrix

	for i, k := range c.kernels {
		km, err := k.Matrix()
		if err != nil {
			out.Free()
			return Matrix{}, errors.Wrapf(err, "combined kernel member %d", i)
		}

		if out.IsEmpty() {
			out = NewMatrix(km.Order())
		} else if km.Order() != out.Order() {
			km.Free()
			out.Free()
			return Matrix{}, errors.NewDimensionError("Combined.Matrix", out.Order(), km.Order(), 0)
		}

		w := float32(c.weights[i])
		n := km.Order()
		for r := 0; r < n; r++ {
			for col := 0; col < n; col++ {
				out.Set(r, col, out.At(r, col)+w*km.At(r, col))
			}
		}
		km.Free()
	}

	return out, nil
}

// Release drops the data binding of every member kernel.
func (c *Combined) Release() {
	for _, k := range c.kernels {
		k.Release()
	}
}
