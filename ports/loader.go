package ports

import (
	"context"

	"gomonte/domain/dist"
)

// TableLoaderPort reads a payout table from an external file. Implementations
// decide the format from the path and validate the table before returning.
type TableLoaderPort interface {
	Load(ctx context.Context, path string) (*dist.Distribution, error)
}

// Scenario is a named payout table bundled with the trial plan it is
// normally run under.
type Scenario struct {
	Name        string
	Description string
	Table       *dist.Distribution
	Plan        TrialPlan
}

// ScenarioStorePort serves the scenario catalog (named tables shipped with
// the service or dropped into its scenario directory).
type ScenarioStorePort interface {
	Load(ctx context.Context, name string) (*Scenario, error)
	List(ctx context.Context) ([]string, error)
}
