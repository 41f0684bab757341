package dist

// Sampler maps uniform draws from [0,1) onto outcome indices via a
// cumulative walk over the proposal column, and precomputes each outcome's
// weighted payoff so the hot loop does one scan and one add per trial.
type Sampler struct {
	cum          []float64
	contribution []float64
	last         int
}

// NewSampler precomputes cumulative proposal boundaries and per-outcome
// contributions (payoff times importance weight) for d.
func NewSampler(d *Distribution) *Sampler {
	n := d.Len()
	s := &Sampler{
		cum:          make([]float64, n),
		contribution: make([]float64, n),
		last:         -1,
	}

	var c float64
	for i := 0; i < n; i++ {
		o := d.Outcome(i)
		c += o.Proposal
		s.cum[i] = c
		s.contribution[i] = o.Payoff * o.Weight()
		if o.Proposal > 0 {
			s.last = i
		}
	}
	return s
}

// Pick selects the first outcome whose cumulative boundary is at or above
// x, skipping outcomes that carry no proposal mass. When accumulated float
// drift leaves x above the final boundary, the last sampleable outcome
// absorbs it.
func (s *Sampler) Pick(x float64) int {
	prev := 0.0
	for i, c := range s.cum {
		if c > prev && x <= c {
			return i
		}
		prev = c
	}
	return s.last
}

// Contribution returns the weighted payoff recorded when outcome i is
// drawn: payoff times original-over-proposal probability. Zero for
// outcomes with no proposal mass.
func (s *Sampler) Contribution(i int) float64 {
	return s.contribution[i]
}

// Len returns the number of outcomes the sampler walks.
func (s *Sampler) Len() int { return len(s.cum) }
