package estimator

import (
	"context"
	"time"

	"gomonte/domain/core"
	"gomonte/domain/dist"
	"gomonte/domain/run"
	"gomonte/ports"
)

// streamName tags every uniform stream the engine requests, so RNG
// adapters can separate estimation draws from other consumers.
const streamName = "estimate"

// cancelMask throttles context polls in the hot loop to one per 64k trials.
const cancelMask = (1 << 16) - 1

// Engine is the weighted Monte Carlo estimator. It draws outcomes from
// the table's proposal column, weights each payoff by the original-over-
// proposal probability ratio, and averages. With the proposal equal to
// the original column it degenerates to plain Monte Carlo.
type Engine struct {
	rng ports.RNGPort
}

// New creates an estimation engine on top of an RNG port.
func New(rng ports.RNGPort) *Engine {
	return &Engine{rng: rng}
}

// Estimate runs plan.Trials weighted draws against d and reports the mean
// and spread. Results are deterministic for a fixed (seed, workers) pair.
func (e *Engine) Estimate(ctx context.Context, d *dist.Distribution, plan ports.TrialPlan) (*run.Result, error) {
	if d == nil || d.Len() == 0 {
		return nil, core.ErrEmptyDistribution
	}
	if plan.Trials <= 0 {
		return nil, core.ErrInvalidTrialCount
	}

	workers := plan.Workers
	if workers < 1 {
		workers = 1
	}
	if int64(workers) > plan.Trials {
		workers = int(plan.Trials)
	}

	start := time.Now()
	sampler := dist.NewSampler(d)

	var acc *moments
	var err error
	if workers == 1 {
		var stream ports.Uniform
		stream, err = e.rng.Stream(ctx, streamName, 0, plan.Seed)
		if err != nil {
			return nil, err
		}
		acc, err = accumulate(ctx, sampler, stream, plan.Trials)
	} else {
		acc, err = e.parallel(ctx, sampler, plan, workers)
	}
	if err != nil {
		return nil, err
	}

	return &run.Result{
		Estimate: acc.mean,
		Trials:   plan.Trials,
		Seed:     plan.Seed,
		Workers:  workers,
		Weighted: d.Weighted(),
		Variance: acc.variance(),
		StdError: acc.stdError(),
		Min:      acc.min,
		Max:      acc.max,
		Elapsed:  time.Since(start),
	}, nil
}

// accumulate is the hot loop: one uniform draw, one bucket walk, one
// Welford update per trial.
func accumulate(ctx context.Context, s *dist.Sampler, stream ports.Uniform, trials int64) (*moments, error) {
	acc := newMoments()
	for i := int64(0); i < trials; i++ {
		if i&cancelMask == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		acc.add(s.Contribution(s.Pick(stream.Float64())))
	}
	return acc, nil
}
