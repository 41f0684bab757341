package estimator

import "math"

// moments accumulates count, mean, and second central moment with
// Welford's update so a billion-trial run never buffers its samples.
// Partitions accumulate independently and merge pairwise.
type moments struct {
	n    int64
	mean float64
	m2   float64
	min  float64
	max  float64
}

func newMoments() *moments {
	return &moments{
		min: math.Inf(1),
		max: math.Inf(-1),
	}
}

func (m *moments) add(x float64) {
	m.n++
	d := x - m.mean
	m.mean += d / float64(m.n)
	m.m2 += d * (x - m.mean)
	if x < m.min {
		m.min = x
	}
	if x > m.max {
		m.max = x
	}
}

// merge folds another accumulator into this one using the parallel
// variance combination, so merged partitions report the same moments a
// single pass over the union would.
func (m *moments) merge(o *moments) {
	if o == nil || o.n == 0 {
		return
	}
	if m.n == 0 {
		*m = *o
		return
	}

	n := m.n + o.n
	d := o.mean - m.mean
	m.mean += d * float64(o.n) / float64(n)
	m.m2 += o.m2 + d*d*float64(m.n)*float64(o.n)/float64(n)
	m.n = n

	if o.min < m.min {
		m.min = o.min
	}
	if o.max > m.max {
		m.max = o.max
	}
}

// variance is the sample variance of the accumulated draws.
func (m *moments) variance() float64 {
	if m.n < 2 {
		return 0
	}
	return m.m2 / float64(m.n-1)
}

// stdError is the standard error of the mean.
func (m *moments) stdError() float64 {
	if m.n < 2 {
		return 0
	}
	return math.Sqrt(m.variance() / float64(m.n))
}
