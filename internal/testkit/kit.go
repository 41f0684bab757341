package testkit

import (
	"context"
	"fmt"

	"gomonte/adapters/rng"
	"gomonte/domain/dist"
	"gomonte/ports"
)

// TestKit provides the fixtures and fake adapters the package tests share.
type TestKit struct{}

// NewTestKit creates a new test kit instance.
func NewTestKit() *TestKit {
	return &TestKit{}
}

// RNGAdapter returns the real seeded RNG adapter.
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewSeededAdapter()
}

// PayoutOutcomes is the four-outcome roulette-style table used across the
// suite. Expectation 0.315, proposal column skewed toward the big payoff.
func PayoutOutcomes() []dist.Outcome {
	return []dist.Outcome{
		{Label: "straight", Probability: 0.05, Payoff: 1.0, Proposal: 0.159},
		{Label: "split", Probability: 0.30, Payoff: 0.3, Proposal: 0.286},
		{Label: "street", Probability: 0.15, Payoff: 0.5, Proposal: 0.238},
		{Label: "even", Probability: 0.50, Payoff: 0.2, Proposal: 0.317},
	}
}

// PayoutExpectation is the analytic expectation of PayoutOutcomes.
const PayoutExpectation = 0.315

// WeightedDistribution builds the fixture table with its skewed proposal.
func WeightedDistribution() (*dist.Distribution, error) {
	return dist.New(PayoutOutcomes())
}

// PlainDistribution builds the fixture table in degenerate form, proposal
// equal to the original column.
func PlainDistribution() (*dist.Distribution, error) {
	return dist.Unweighted(PayoutOutcomes())
}

// ZeroVarianceDistribution builds the fixture table under its ideal
// proposal, where every trial contributes exactly the expectation.
func ZeroVarianceDistribution() (*dist.Distribution, error) {
	d, err := WeightedDistribution()
	if err != nil {
		return nil, err
	}
	proposal, err := d.ZeroVarianceProposal()
	if err != nil {
		return nil, err
	}
	return d.WithProposal(proposal)
}

// SequenceSource replays a fixed sequence of uniform draws, cycling once
// exhausted. It stands in for a real stream when a test needs to steer
// the sampler onto chosen outcomes.
type SequenceSource struct {
	draws []float64
	next  int
}

// NewSequenceSource creates a source over the given draws.
func NewSequenceSource(draws ...float64) *SequenceSource {
	return &SequenceSource{draws: draws}
}

// Float64 returns the next draw in the sequence.
func (s *SequenceSource) Float64() float64 {
	x := s.draws[s.next%len(s.draws)]
	s.next++
	return x
}

// FixedRNG implements ports.RNGPort with the same fixed draw sequence for
// every stream it hands out, regardless of name, partition, or seed.
type FixedRNG struct {
	Draws []float64
}

// SeededStream returns a fresh replay of the fixed draws.
func (f *FixedRNG) SeededStream(ctx context.Context, name string, seed int64) (ports.Uniform, error) {
	return NewSequenceSource(f.Draws...), nil
}

// Stream returns a fresh replay of the fixed draws.
func (f *FixedRNG) Stream(ctx context.Context, name string, partition int, baseSeed int64) (ports.Uniform, error) {
	return NewSequenceSource(f.Draws...), nil
}

// ValidateSeed checks the expected prefix against the fixed draws.
func (f *FixedRNG) ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error {
	source := NewSequenceSource(f.Draws...)
	for i, want := range expected {
		if got := source.Float64(); got != want {
			return fmt.Errorf("draw %d = %v, expected %v", i, got, want)
		}
	}
	return nil
}
