package mmd

import (
	"math"

	"github.com/YuminosukeSato/stattest/data"
)

// Normalizer scales the raw folded estimates to the scale of the test's
// asymptotic null distribution. NormalizeStatistic is applied exactly once to
// the accumulated statistic; NormalizeVariance only to the permutation-mode
// second moment.
type Normalizer interface {
	NormalizeStatistic(stat float64) float64
	NormalizeVariance(va float64) float64
}

// LinearTimeNormalizer scales by the total sample counts of both streams:
// the statistic by sqrt(Nx*Ny/(Nx+Ny)), the variance by Nx*Ny/(Nx+Ny).
type LinearTimeNormalizer struct {
	src data.Source
}

// NewLinearTimeNormalizer returns the linear-time rule reading sample counts
// from src at normalization time, after the stream has been consumed.
func NewLinearTimeNormalizer(src data.Source) *LinearTimeNormalizer {
	return &LinearTimeNormalizer{src: src}
}

func (n *LinearTimeNormalizer) scale() float64 {
	nx := float64(n.src.NumSamplesAt(data.DistP))
	ny := float64(n.src.NumSamplesAt(data.DistQ))
	if nx <= 0 || ny <= 0 {
		return 0
	}
	return nx * ny / (nx + ny)
}

// NormalizeStatistic implements Normalizer.
func (n *LinearTimeNormalizer) NormalizeStatistic(stat float64) float64 {
	return stat * math.Sqrt(n.scale())
}

// NormalizeVariance implements Normalizer.
func (n *LinearTimeNormalizer) NormalizeVariance(va float64) float64 {
	return va * n.scale()
}

// BTestNormalizer scales by the block sizes of both streams: the statistic by
// Bx*By/(Bx+By), the variance by the square of that factor.
type BTestNormalizer struct {
	src data.Source
}

// NewBTestNormalizer returns the block-test rule reading block sizes from
// src.
func NewBTestNormalizer(src data.Source) *BTestNormalizer {
	return &BTestNormalizer{src: src}
}

func (n *BTestNormalizer) scale() float64 {
	bx := float64(n.src.BlockSizeAt(data.DistP))
	by := float64(n.src.BlockSizeAt(data.DistQ))
	if bx <= 0 || by <= 0 {
		return 0
	}
	return bx * by / (bx + by)
}

// NormalizeStatistic implements Normalizer.
func (n *BTestNormalizer) NormalizeStatistic(stat float64) float64 {
	return stat * n.scale()
}

// NormalizeVariance implements Normalizer.
func (n *BTestNormalizer) NormalizeVariance(va float64) float64 {
	s := n.scale()
	return va * s * s
}
