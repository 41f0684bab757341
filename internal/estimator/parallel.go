package estimator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gomonte/domain/dist"
	"gomonte/ports"
)

// parallel splits the trial budget across workers, each on its own
// partition-derived stream, and merges the partial moments in partition
// order. The merged result depends only on (seed, workers), never on
// goroutine scheduling.
func (e *Engine) parallel(ctx context.Context, s *dist.Sampler, plan ports.TrialPlan, workers int) (*moments, error) {
	share := plan.Trials / int64(workers)
	remainder := plan.Trials % int64(workers)

	parts := make([]*moments, workers)
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		w := w
		trials := share
		if w == workers-1 {
			trials += remainder
		}
		g.Go(func() error {
			stream, err := e.rng.Stream(gctx, streamName, w, plan.Seed)
			if err != nil {
				return err
			}
			acc, err := accumulate(gctx, s, stream, trials)
			if err != nil {
				return err
			}
			parts[w] = acc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newMoments()
	for _, p := range parts {
		total.merge(p)
	}
	return total, nil
}
