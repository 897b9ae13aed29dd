package selection

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// MedianHeuristic picks the candidate whose bandwidth lies closest to the
// median pairwise distance of the merged samples. Every candidate must
// implement kernel.Bandwidth. The policy borrows the distance matrix for the
// duration of Select; the caller keeps ownership.
type MedianHeuristic struct {
	reg  *kernel.Registry
	dist kernel.Matrix
}

// NewMedianHeuristic creates the policy over reg using the pairwise distance
// matrix dist.
func NewMedianHeuristic(reg *kernel.Registry, dist kernel.Matrix) *MedianHeuristic {
	return &MedianHeuristic{reg: reg, dist: dist}
}

// Select implements Policy.
func (p *MedianHeuristic) Select() (Result, error) {
	const op = "MedianHeuristic"

	if p.reg.NumKernels() == 0 {
		return Result{}, errors.NewEmptyRegistryError(op)
	}
	n := p.dist.Order()
	if n < 2 {
		return Result{}, errors.NewValueError(op,
			fmt.Sprintf("distance matrix needs at least two samples, got %d", n))
	}

	// 上三角の距離値の中央値を求める（対角はゼロなので除外）
	vals := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			vals = append(vals, float64(p.dist.At(i, j)))
		}
	}
	sort.Float64s(vals)
	median := stat.Quantile(0.5, stat.Empirical, vals, nil)

	bestIdx := -1
	bestGap := math.Inf(1)
	for i := 0; i < p.reg.NumKernels(); i++ {
		bw, ok := p.reg.KernelAt(i).(kernel.Bandwidth)
		if !ok {
			return Result{}, errors.NewValueError(op,
				fmt.Sprintf("kernel at slot %d does not expose a bandwidth", i))
		}
		gap := math.Abs(bw.Bandwidth() - median)
		if gap < bestGap {
			bestGap = gap
			bestIdx = i
		}
	}

	return Result{Kernel: p.reg.KernelAt(bestIdx)}, nil
}
