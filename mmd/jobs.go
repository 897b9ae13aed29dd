package mmd

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/YuminosukeSato/stattest/compute"
	"github.com/YuminosukeSato/stattest/kernel"
	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// The estimation jobs in this file are pure functions over one merged block's
// kernel matrix. Rows [0, bx) of the matrix belong to distribution P, rows
// [bx, order) to distribution Q. Jobs run concurrently on different blocks,
// so they keep no per-call state beyond their closure parameters; the
// permutation job serializes only its random draw.

// validateBlockShape rejects block geometries the configured statistic cannot
// be computed on.
func validateBlockShape(op string, t StatisticType, bx, by int) error {
	switch t {
	case UnbiasedFull:
		if bx < 2 || by < 2 {
			return errors.NewValueError(op,
				fmt.Sprintf("unbiased statistic needs at least two samples per block, got %dx%d", bx, by))
		}
	case UnbiasedIncomplete:
		if bx != by {
			return errors.NewValueError(op,
				fmt.Sprintf("incomplete statistic requires equal block sizes, got %dx%d", bx, by))
		}
		if bx < 2 {
			return errors.NewValueError(op,
				fmt.Sprintf("incomplete statistic needs at least two samples per block, got %d", bx))
		}
	case BiasedFull:
		if bx < 1 || by < 1 {
			return errors.NewValueError(op,
				fmt.Sprintf("biased statistic needs at least one sample per block, got %dx%d", bx, by))
		}
	default:
		return errors.NewUnsupportedMethodError(op, t.String())
	}
	return nil
}

// newStatisticJob returns the job computing the statistic estimate of type t
// on one kernel matrix with bx leading P rows.
func newStatisticJob(t StatisticType, bx int) compute.Job {
	return func(km kernel.Matrix) float32 {
		return float32(blockStatistic(t, km, bx, nil))
	}
}

// newPermutationJob returns the job computing the statistic of type t under a
// fresh random relabeling of the block's rows. Draws are serialized through
// mu; the matrix scan itself runs in parallel across blocks.
func newPermutationJob(t StatisticType, bx int, rng *rand.Rand, mu *sync.Mutex) compute.Job {
	return func(km kernel.Matrix) float32 {
		mu.Lock()
		rows := rng.Perm(km.Order())
		mu.Unlock()
		return float32(blockStatistic(t, km, bx, rows))
	}
}

// newDirectVarianceJob returns the linear-time variance job: the empirical
// variance of the h-statistic over adjacent within-block sample pairs
// (Gretton et al., 2012).
func newDirectVarianceJob(bx int) compute.Job {
	return func(km kernel.Matrix) float32 {
		by := km.Order() - bx
		n := bx
		if by < n {
			n = by
		}
		pairs := n / 2
		if pairs == 0 {
			return 0
		}

		var sum, sumSq float64
		for l := 0; l < pairs; l++ {
			i, j := 2*l, 2*l+1
			h := float64(km.At(i, j)) +
				float64(km.At(bx+i, bx+j)) -
				float64(km.At(i, bx+j)) -
				float64(km.At(j, bx+i))
			sum += h
			sumSq += h * h
		}
		mean := sum / float64(pairs)
		return float32(sumSq/float64(pairs) - mean*mean)
	}
}

// blockStatistic computes the statistic of type t over km. rows remaps matrix
// indices: position a reads row rows[a], with positions [0, bx) forming the P
// group. A nil rows means the identity labeling.
func blockStatistic(t StatisticType, km kernel.Matrix, bx int, rows []int) float64 {
	order := km.Order()
	if rows == nil {
		rows = orderedRows(order)
	}
	by := order - bx

	// uxx/uyy sum each within-group pair once, sxy sums every cross pair.
	var uxx, uyy, sxy float64
	for a := 0; a < order; a++ {
		i := rows[a]
		for b := a + 1; b < order; b++ {
			v := float64(km.At(i, rows[b]))
			switch {
			case b < bx:
				uxx += v
			case a >= bx:
				uyy += v
			default:
				sxy += v
			}
		}
	}

	nx, ny := float64(bx), float64(by)
	switch t {
	case UnbiasedFull:
		return 2*uxx/(nx*(nx-1)) + 2*uyy/(ny*(ny-1)) - 2*sxy/(nx*ny)
	case UnbiasedIncomplete:
		paired := bx
		if by < paired {
			paired = by
		}
		var sdiag float64
		for l := 0; l < paired; l++ {
			sdiag += float64(km.At(rows[l], rows[bx+l]))
		}
		n := nx
		return 2 * (uxx + uyy - (sxy - sdiag)) / (n * (n - 1))
	case BiasedFull:
		var dxx, dyy float64
		for a := 0; a < order; a++ {
			v := float64(km.At(rows[a], rows[a]))
			if a < bx {
				dxx += v
			} else {
				dyy += v
			}
		}
		return (2*uxx+dxx)/(nx*nx) + (2*uyy+dyy)/(ny*ny) - 2*sxy/(nx*ny)
	default:
		return 0
	}
}

func orderedRows(order int) []int {
	rows := make([]int, order)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
