package estimator

import (
	"context"
	"math"
	"testing"

	"gomonte/domain/core"
	"gomonte/internal/testkit"
	"gomonte/ports"
)

func newTestEngine() *Engine {
	return New(testkit.NewTestKit().RNGAdapter())
}

func TestEstimate_PlainTableIsUnbiased(t *testing.T) {
	d, err := testkit.PlainDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	result, err := newTestEngine().Estimate(context.Background(), d, ports.TrialPlan{
		Trials: 200000,
		Seed:   42,
	})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if got := result.AbsoluteError(testkit.PayoutExpectation); got > 0.01 {
		t.Errorf("estimate %v drifted %v from 0.315", result.Estimate, got)
	}
	if result.Weighted {
		t.Errorf("plain run reported as weighted")
	}
	if result.Trials != 200000 || result.Workers != 1 {
		t.Errorf("plan echo wrong: trials=%d workers=%d", result.Trials, result.Workers)
	}
}

func TestEstimate_WeightedTableIsUnbiased(t *testing.T) {
	d, err := testkit.WeightedDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	result, err := newTestEngine().Estimate(context.Background(), d, ports.TrialPlan{
		Trials: 200000,
		Seed:   42,
	})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if got := result.AbsoluteError(testkit.PayoutExpectation); got > 0.01 {
		t.Errorf("weighted estimate %v drifted %v from 0.315", result.Estimate, got)
	}
	if !result.Weighted {
		t.Errorf("weighted run reported as plain")
	}
}

func TestEstimate_ErrorShrinksWithTrials(t *testing.T) {
	if testing.Short() {
		t.Skip("convergence sweep is slow")
	}

	d, err := testkit.PlainDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	engine := newTestEngine()
	ctx := context.Background()

	// A hundredfold trial budget should shrink the average absolute error
	// about tenfold. Averaging over seeds keeps the ratio stable.
	const seeds = 16
	var small, large float64
	for seed := int64(1); seed <= seeds; seed++ {
		rs, err := engine.Estimate(ctx, d, ports.TrialPlan{Trials: 10000, Seed: seed})
		if err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}
		rl, err := engine.Estimate(ctx, d, ports.TrialPlan{Trials: 1000000, Seed: seed})
		if err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}
		small += rs.AbsoluteError(testkit.PayoutExpectation)
		large += rl.AbsoluteError(testkit.PayoutExpectation)
	}
	small /= seeds
	large /= seeds

	if large >= small {
		t.Fatalf("error grew with trials: %v at 1e4 vs %v at 1e6", small, large)
	}
	if large > 0.001 {
		t.Errorf("average error %v at 1e6 trials is far above the expected scale", large)
	}
	ratio := small / large
	if ratio < 3 || ratio > 35 {
		t.Errorf("error ratio %v outside the expected tenfold band", ratio)
	}
}

func TestEstimate_ZeroVarianceProposal(t *testing.T) {
	d, err := testkit.ZeroVarianceDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	engine := newTestEngine()

	for _, workers := range []int{1, 4} {
		result, err := engine.Estimate(context.Background(), d, ports.TrialPlan{
			Trials:  10000,
			Seed:    42,
			Workers: workers,
		})
		if err != nil {
			t.Fatalf("Estimate failed with %d workers: %v", workers, err)
		}

		if got := result.AbsoluteError(testkit.PayoutExpectation); got > 1e-12 {
			t.Errorf("workers=%d: estimate %v not pinned to 0.315 (off by %v)", workers, result.Estimate, got)
		}
		if result.Variance > 1e-24 {
			t.Errorf("workers=%d: variance %v, want ~0 under the ideal proposal", workers, result.Variance)
		}
		if math.Abs(result.Min-testkit.PayoutExpectation) > 1e-12 ||
			math.Abs(result.Max-testkit.PayoutExpectation) > 1e-12 {
			t.Errorf("workers=%d: min/max %v/%v stray from 0.315", workers, result.Min, result.Max)
		}
	}

	// A single trial already lands on the expectation exactly.
	one, err := engine.Estimate(context.Background(), d, ports.TrialPlan{Trials: 1, Seed: 42})
	if err != nil {
		t.Fatalf("Estimate failed for one trial: %v", err)
	}
	if got := one.AbsoluteError(testkit.PayoutExpectation); got > 1e-12 {
		t.Errorf("one trial estimate %v not pinned to 0.315 (off by %v)", one.Estimate, got)
	}
}

func TestEstimate_RoundedProposalTracksTruth(t *testing.T) {
	// The three-decimal proposal column sits close enough to the ideal one
	// that a modest budget lands within 1e-3 of the expectation.
	d, err := testkit.WeightedDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	result, err := newTestEngine().Estimate(context.Background(), d, ports.TrialPlan{
		Trials: 200000,
		Seed:   42,
	})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if got := result.AbsoluteError(testkit.PayoutExpectation); got > 1e-3 {
		t.Errorf("estimate %v drifted %v from 0.315 under the rounded proposal", result.Estimate, got)
	}
	if result.Variance >= 0.035275 {
		t.Errorf("variance %v not below the plain estimator's 0.035275", result.Variance)
	}
}

func TestEstimate_DegenerateMatchesPlainAverage(t *testing.T) {
	d, err := testkit.PlainDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	// Steered draws: 0.01 lands on the 1.0 payoff, 0.9 on the 0.2 payoff.
	// With unit weights the estimate is the plain average of those payoffs.
	engine := New(&testkit.FixedRNG{Draws: []float64{0.01, 0.9, 0.01, 0.9}})
	result, err := engine.Estimate(context.Background(), d, ports.TrialPlan{Trials: 4, Seed: 1})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if math.Abs(result.Estimate-0.6) > 1e-12 {
		t.Errorf("estimate = %v, want the plain average 0.6", result.Estimate)
	}
	if result.Min != 0.2 || result.Max != 1.0 {
		t.Errorf("min/max = %v/%v, want the raw payoffs 0.2/1.0", result.Min, result.Max)
	}
}

func TestEstimate_ReplaysBitIdentically(t *testing.T) {
	d, err := testkit.WeightedDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	engine := newTestEngine()
	ctx := context.Background()

	for _, workers := range []int{1, 4} {
		plan := ports.TrialPlan{Trials: 50000, Seed: 42, Workers: workers}
		first, err := engine.Estimate(ctx, d, plan)
		if err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}
		second, err := engine.Estimate(ctx, d, plan)
		if err != nil {
			t.Fatalf("Estimate failed: %v", err)
		}

		if first.Estimate != second.Estimate {
			t.Errorf("workers=%d: replay diverged: %v vs %v", workers, first.Estimate, second.Estimate)
		}
		if first.Variance != second.Variance {
			t.Errorf("workers=%d: variance diverged: %v vs %v", workers, first.Variance, second.Variance)
		}
	}

	a, err := engine.Estimate(ctx, d, ports.TrialPlan{Trials: 50000, Seed: 1})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	b, err := engine.Estimate(ctx, d, ports.TrialPlan{Trials: 50000, Seed: 2})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if a.Estimate == b.Estimate {
		t.Errorf("different seeds produced identical estimates")
	}
}

func TestEstimate_ParallelStaysUnbiased(t *testing.T) {
	d, err := testkit.PlainDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	result, err := newTestEngine().Estimate(context.Background(), d, ports.TrialPlan{
		Trials:  100003, // remainder lands on the last worker
		Seed:    42,
		Workers: 4,
	})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if result.Workers != 4 {
		t.Errorf("workers = %d, want 4", result.Workers)
	}
	if result.Trials != 100003 {
		t.Errorf("trials = %d, want 100003", result.Trials)
	}
	if got := result.AbsoluteError(testkit.PayoutExpectation); got > 0.01 {
		t.Errorf("parallel estimate %v drifted %v from 0.315", result.Estimate, got)
	}
}

func TestEstimate_Rejections(t *testing.T) {
	d, err := testkit.PlainDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
	engine := newTestEngine()
	ctx := context.Background()

	if _, err := engine.Estimate(ctx, nil, ports.TrialPlan{Trials: 10}); err == nil {
		t.Errorf("Estimate accepted a nil distribution")
	} else if !core.IsInvalidDistribution(err) {
		t.Errorf("nil distribution error not marked invalid: %v", err)
	}

	for _, trials := range []int64{0, -5} {
		if _, err := engine.Estimate(ctx, d, ports.TrialPlan{Trials: trials}); err == nil {
			t.Errorf("Estimate accepted trial count %d", trials)
		} else if !core.IsInvalidDistribution(err) {
			t.Errorf("trial count error not marked invalid: %v", err)
		}
	}
}

func TestEstimate_WorkersCappedByTrials(t *testing.T) {
	d, err := testkit.PlainDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	result, err := newTestEngine().Estimate(context.Background(), d, ports.TrialPlan{
		Trials:  3,
		Seed:    42,
		Workers: 8,
	})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if result.Workers != 3 {
		t.Errorf("workers = %d, want cap at the trial count 3", result.Workers)
	}
}

func TestEstimate_HonorsCancellation(t *testing.T) {
	d, err := testkit.PlainDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newTestEngine().Estimate(ctx, d, ports.TrialPlan{Trials: 1 << 40, Seed: 42})
	if err == nil {
		t.Fatalf("Estimate ignored a cancelled context")
	}
	if err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestEstimate_SampleVarianceMatchesTable(t *testing.T) {
	d, err := testkit.PlainDistribution()
	if err != nil {
		t.Fatalf("fixture failed: %v", err)
	}

	result, err := newTestEngine().Estimate(context.Background(), d, ports.TrialPlan{
		Trials: 200000,
		Seed:   7,
	})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	// Analytic variance of the plain payoff draw is 0.035275.
	if math.Abs(result.Variance-0.035275) > 0.002 {
		t.Errorf("sample variance %v far from the analytic 0.035275", result.Variance)
	}
	if result.StdError <= 0 || result.StdError > 0.001 {
		t.Errorf("std error %v outside the expected scale", result.StdError)
	}
}
