// Package online provides numerically stable streaming accumulators.
//
// The estimation drivers fold one scalar at a time into these accumulators
// across an a-priori-unknown number of stream bursts, so every update must be
// O(1) and must not rely on a grand total (naive summation cancels
// catastrophically on long streams).
package online

// Mean maintains a running arithmetic mean with the online update rule
//
//	mean += (x - mean) / n
//
// where n counts the observation being folded. The zero value is ready to use.
type Mean struct {
	n    int64
	mean float64
}

// Update folds one observation into the running mean.
func (m *Mean) Update(x float64) {
	m.n++
	m.mean += (x - m.mean) / float64(m.n)
}

// Value returns the current mean estimate, 0 before any update.
func (m *Mean) Value() float64 {
	return m.mean
}

// Count returns the number of observations folded so far.
func (m *Mean) Count() int64 {
	return m.n
}

// Reset returns the accumulator to its initial state.
func (m *Mean) Reset() {
	*m = Mean{}
}

// Variance maintains a one-pass running second moment alongside the mean:
//
//	delta := x - mean
//	n++
//	mean += delta / n
//	m2 += delta * (x - mean)
//
// The cross term is centered on the mean AFTER it absorbed the current
// observation. This exact update order is part of the contract: callers
// normalize the raw M2 sum, and that normalization is calibrated against this
// one-pass form rather than the two-pass textbook sample variance. The zero
// value is ready to use.
type Variance struct {
	n    int64
	mean float64
	m2   float64
}

// Update folds one observation into the running mean and second moment.
func (v *Variance) Update(x float64) {
	delta := x - v.mean
	v.n++
	v.mean += delta / float64(v.n)
	v.m2 += delta * (x - v.mean)
}

// Mean returns the running mean of the observations, 0 before any update.
func (v *Variance) Mean() float64 {
	return v.mean
}

// M2 returns the accumulated second-moment sum. It is NOT divided by the
// observation count; callers that want a variance apply their own
// normalization (or use SampleVariance).
func (v *Variance) M2() float64 {
	return v.m2
}

// SampleVariance returns M2/(n-1), or 0 for fewer than two observations.
func (v *Variance) SampleVariance() float64 {
	if v.n < 2 {
		return 0
	}
	return v.m2 / float64(v.n-1)
}

// Count returns the number of observations folded so far.
func (v *Variance) Count() int64 {
	return v.n
}

// Reset returns the accumulator to its initial state.
func (v *Variance) Reset() {
	*v = Variance{}
}
