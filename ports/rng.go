package ports

import "context"

// Uniform is a source of draws from [0,1). The estimator consumes exactly
// one draw per trial, so any fixed sequence of floats in-range is a valid
// source for replay and testing.
type Uniform interface {
	Float64() float64
}

// RNGPort provides seeded random number generation for deterministic runs
type RNGPort interface {
	// SeededStream creates a deterministic uniform stream for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (Uniform, error)

	// Stream creates a deterministic stream for one partition of a run.
	// Partitions of the same run never share a stream, and the same
	// (baseSeed, partition) pair always yields the same draws.
	Stream(ctx context.Context, name string, partition int, baseSeed int64) (Uniform, error)

	// ValidateSeed ensures the seed produces expected deterministic results
	ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error
}
