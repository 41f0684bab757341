package ports

import (
	"context"

	"gomonte/domain/dist"
	"gomonte/domain/run"
)

// TrialPlan fixes the execution shape of a run before any trial fires.
type TrialPlan struct {
	Trials  int64 `json:"trials"`
	Seed    int64 `json:"seed"`
	Workers int   `json:"workers"`
}

// EstimatorPort runs weighted Monte Carlo estimation over a payout table
type EstimatorPort interface {
	// Estimate draws plan.Trials outcomes from the table's proposal
	// column, averages the weighted payoffs, and reports the spread.
	// The distribution is validated before the first draw and the run
	// fails fast on any violation.
	Estimate(ctx context.Context, d *dist.Distribution, plan TrialPlan) (*run.Result, error)
}
