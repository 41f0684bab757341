package dist

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gomonte/domain/core"
)

// SumTolerance is the permitted floating-point drift when checking that a
// probability column sums to 1.
const SumTolerance = 1e-9

// Outcome is one row of a payout table: the chance the house assigns to the
// outcome, what it pays, and the proposal probability the sampler actually
// draws it with. Immutable once the owning Distribution is built.
type Outcome struct {
	Label       string  `json:"label,omitempty"`
	Probability float64 `json:"probability"`
	Payoff      float64 `json:"payoff"`
	Proposal    float64 `json:"proposal"`
}

// Weight is the importance weight applied to this outcome's payoff when it
// is drawn from the proposal distribution. Zero when the outcome carries no
// original probability mass.
func (o Outcome) Weight() float64 {
	if o.Proposal == 0 {
		return 0
	}
	return o.Probability / o.Proposal
}

// Distribution is an ordered sequence of Outcomes, validated on
// construction and read-only afterwards. Order matters: it fixes the
// cumulative buckets the sampler maps [0,1) onto.
type Distribution struct {
	outcomes []Outcome
}

// New builds a weighted distribution and fail-fasts on every invariant the
// estimator relies on: non-empty, probabilities in [0,1], both columns
// summing to 1 within SumTolerance, and a strictly positive proposal
// wherever the original probability is positive.
func New(outcomes []Outcome) (*Distribution, error) {
	if len(outcomes) == 0 {
		return nil, core.ErrEmptyDistribution
	}

	var pSum, qSum float64
	for i, o := range outcomes {
		if !inUnitInterval(o.Probability) {
			return nil, core.NewDistributionError(i, "probability", core.ErrProbabilityRange)
		}
		if !inUnitInterval(o.Proposal) {
			return nil, core.NewDistributionError(i, "proposal", core.ErrProbabilityRange)
		}
		if math.IsNaN(o.Payoff) || math.IsInf(o.Payoff, 0) {
			return nil, core.NewDistributionError(i, "payoff", core.ErrProbabilityRange)
		}
		if o.Proposal == 0 && o.Probability > 0 {
			return nil, core.NewDistributionError(i, "proposal", core.ErrUnreachableOutcome)
		}
		pSum += o.Probability
		qSum += o.Proposal
	}

	if math.Abs(pSum-1) > SumTolerance {
		return nil, core.NewSumError("probability", pSum)
	}
	if math.Abs(qSum-1) > SumTolerance {
		return nil, core.NewSumError("proposal", qSum)
	}

	d := &Distribution{outcomes: make([]Outcome, len(outcomes))}
	copy(d.outcomes, outcomes)
	return d, nil
}

// Unweighted builds the degenerate plain Monte Carlo form: the proposal
// column is the original column, so every importance weight is exactly 1.
// Proposal values on the input outcomes are ignored.
func Unweighted(outcomes []Outcome) (*Distribution, error) {
	plain := make([]Outcome, len(outcomes))
	for i, o := range outcomes {
		o.Proposal = o.Probability
		plain[i] = o
	}
	return New(plain)
}

// WithProposal returns a new Distribution over the same outcomes with the
// proposal column replaced. The replacement is validated like any other.
func (d *Distribution) WithProposal(proposal []float64) (*Distribution, error) {
	if len(proposal) != len(d.outcomes) {
		return nil, fmt.Errorf("%w: proposal column has %d entries for %d outcomes",
			core.ErrInvalidDistribution, len(proposal), len(d.outcomes))
	}
	next := make([]Outcome, len(d.outcomes))
	for i, o := range d.outcomes {
		o.Proposal = proposal[i]
		next[i] = o
	}
	return New(next)
}

// Len returns the number of outcomes.
func (d *Distribution) Len() int { return len(d.outcomes) }

// Outcome returns the i-th outcome.
func (d *Distribution) Outcome(i int) Outcome { return d.outcomes[i] }

// Outcomes returns a copy of the outcome sequence.
func (d *Distribution) Outcomes() []Outcome {
	out := make([]Outcome, len(d.outcomes))
	copy(out, d.outcomes)
	return out
}

// Weighted reports whether the proposal column differs from the original
// anywhere, i.e. whether importance weighting is in play.
func (d *Distribution) Weighted() bool {
	for _, o := range d.outcomes {
		if o.Proposal != o.Probability {
			return true
		}
	}
	return false
}

// Expectation is the analytic truth the estimator converges to:
// sum of probability times payoff over all outcomes.
func (d *Distribution) Expectation() float64 {
	var e float64
	for _, o := range d.outcomes {
		e += o.Probability * o.Payoff
	}
	return e
}

// ZeroVarianceProposal derives the proposal column that makes every trial
// yield the identical weighted payoff: proposal proportional to
// probability times payoff. Defined only when every payoff carrying
// probability mass is strictly positive.
func (d *Distribution) ZeroVarianceProposal() ([]float64, error) {
	var total float64
	for _, o := range d.outcomes {
		if o.Probability > 0 && o.Payoff <= 0 {
			return nil, core.ErrNoZeroVarianceProposal
		}
		total += o.Probability * o.Payoff
	}
	if total <= 0 {
		return nil, core.ErrNoZeroVarianceProposal
	}

	proposal := make([]float64, len(d.outcomes))
	for i, o := range d.outcomes {
		proposal[i] = o.Probability * o.Payoff / total
	}
	return proposal, nil
}

// Hash fingerprints the full table (labels and all three numeric columns)
// for run manifests. Identical tables hash identically regardless of how
// they were loaded.
func (d *Distribution) Hash() core.DistributionHash {
	var b strings.Builder
	for _, o := range d.outcomes {
		b.WriteString(o.Label)
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(o.Probability, 'g', -1, 64))
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(o.Payoff, 'g', -1, 64))
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(o.Proposal, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return core.NewDistributionHash([]byte(b.String()))
}

// inUnitInterval rejects NaN along with anything outside [0,1].
func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
