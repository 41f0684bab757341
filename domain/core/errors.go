package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInvalidDistribution is the single failure kind of the estimator
	// core. Every validation failure wraps it so callers can test with
	// errors.Is regardless of which invariant broke.
	ErrInvalidDistribution = errors.New("invalid distribution")

	ErrEmptyDistribution  = fmt.Errorf("%w: no outcomes", ErrInvalidDistribution)
	ErrProbabilityRange   = fmt.Errorf("%w: probability outside [0,1]", ErrInvalidDistribution)
	ErrProbabilitySum     = fmt.Errorf("%w: probabilities do not sum to 1", ErrInvalidDistribution)
	ErrUnreachableOutcome = fmt.Errorf("%w: zero proposal probability for an outcome with positive probability", ErrInvalidDistribution)
	ErrInvalidTrialCount  = fmt.Errorf("%w: trial count must be positive", ErrInvalidDistribution)

	// Derivation errors
	ErrNoZeroVarianceProposal = errors.New("zero-variance proposal undefined")

	// Loader errors (plumbing layer, never raised by the estimator core)
	ErrTableFormat      = errors.New("unreadable outcome table")
	ErrScenarioNotFound = errors.New("scenario not found")
)

// Error constructors with context
func NewDistributionError(index int, field string, err error) error {
	return fmt.Errorf("outcome %d: %s: %w", index, field, err)
}

func NewSumError(column string, sum float64) error {
	return fmt.Errorf("%w: %s column sums to %v", ErrProbabilitySum, column, sum)
}

func NewTableError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTableFormat, path, err)
}

func NewValidationError(scope, message string) error {
	return fmt.Errorf("%s: %s", scope, message)
}

// Error checking helpers
func IsInvalidDistribution(err error) bool {
	return errors.Is(err, ErrInvalidDistribution)
}

func IsTableError(err error) bool {
	return errors.Is(err, ErrTableFormat)
}
