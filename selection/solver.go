package selection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// solveWeights solves (Q + ridge*I) w = stats by Cholesky factorization,
// clamps negative entries to zero and normalizes the rest to sum to one.
// The covariance estimate is symmetrized first; streaming noise can leave it
// slightly asymmetric or indefinite.
func solveWeights(stats []float64, q mat.Matrix) ([]float64, error) {
	const op = "solveWeights"

	n := len(stats)
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a.SetSym(i, j, (q.At(i, j)+q.At(j, i))/2)
		}
		a.SetSym(i, i, q.At(i, i)+ridge)
	}

	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil, errors.Wrap(errors.ErrSingularMatrix,
			"stattest: covariance estimate is not positive definite")
	}

	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, mat.NewVecDense(n, stats)); err != nil {
		return nil, errors.Wrap(err, "stattest: weight solve failed")
	}

	w := make([]float64, n)
	var sum float64
	for i := range w {
		v := sol.AtVec(i)
		if v < 0 {
			v = 0
		}
		w[i] = v
		sum += v
	}
	if sum <= 0 {
		return nil, errors.NewValueError(op,
			"no kernel received a positive weight; statistic estimates may all be non-positive")
	}
	for i := range w {
		w[i] /= sum
	}
	return w, nil
}

// combineRegistry builds a weighted combined kernel over every candidate in
// reg.
func combineRegistry(reg *kernel.Registry, w []float64) (*kernel.Combined, error) {
	kernels := make([]kernel.Kernel, reg.NumKernels())
	for i := range kernels {
		kernels[i] = reg.KernelAt(i)
	}
	return kernel.NewCombined(kernels, w)
}
