package app

import (
	"context"
	"fmt"
	"math"

	"gomonte/domain/core"
	"gomonte/domain/dist"
	"gomonte/domain/run"
	"gomonte/internal/analysis"
	apperrors "gomonte/internal/errors"
	"gomonte/ports"
)

// ProposalMode selects which proposal column a run samples from.
type ProposalMode string

const (
	// ProposalAsGiven samples from the table's own proposal column.
	ProposalAsGiven ProposalMode = "as-given"
	// ProposalPlain strips the proposal and samples from the original
	// probabilities, weight 1 everywhere.
	ProposalPlain ProposalMode = "plain"
	// ProposalZeroVariance derives the proposal proportional to
	// probability times payoff before sampling.
	ProposalZeroVariance ProposalMode = "zero-variance"
)

// Defaults are the run parameters applied when a request leaves them unset,
// plus the hard limits the service enforces.
type Defaults struct {
	Trials      int64
	Seed        int64
	MaxTrials   int64
	MaxWorkers  int
	CodeVersion string
}

// TableSource names a payout table one of three ways. Exactly one field is
// honored, in order: in-memory table, scenario name, file path.
type TableSource struct {
	Table     *dist.Distribution `json:"-"`
	Scenario  string             `json:"scenario,omitempty"`
	TablePath string             `json:"table_path,omitempty"`
}

// RunRequest defines the inputs for one estimation run.
type RunRequest struct {
	Source  TableSource
	Trials  int64
	Seed    *int64 // nil picks the scenario or service default
	Workers int
	Mode    ProposalMode
	Level   float64 // confidence level, 0 picks 0.95
}

// Interval is the confidence interval attached to a run response.
type Interval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// RunResponse carries the run record plus the analytic references a report
// needs next to it.
type RunResponse struct {
	Record      run.Record `json:"record"`
	Expectation float64    `json:"expectation"`
	Interval    Interval   `json:"interval"`
}

// ComparePair is one rung of a plain-versus-weighted comparison.
type ComparePair struct {
	Trials            int64      `json:"trials"`
	Plain             run.Record `json:"plain"`
	Weighted          run.Record `json:"weighted"`
	VarianceReduction float64    `json:"variance_reduction"`
}

// CompareRequest runs the same table with and without weight correction
// across a ladder of trial budgets.
type CompareRequest struct {
	Source  TableSource
	Ladder  []int64 // empty runs the default budget once
	Seed    *int64
	Workers int
	Mode    ProposalMode // proposal for the weighted side
}

// CompareResponse pairs plain and weighted records per budget.
type CompareResponse struct {
	Expectation float64       `json:"expectation"`
	Pairs       []ComparePair `json:"pairs"`
}

// ConvergeRequest sweeps replicate batches across trial budgets to expose
// the root-n error law.
type ConvergeRequest struct {
	Source      TableSource
	TrialCounts []int64 // empty uses {1e4, 1e6}
	Replicates  int     // <1 uses 8
	Seed        *int64
	Workers     int
	Mode        ProposalMode
}

// ConvergePoint summarizes the replicate batch at one trial budget.
type ConvergePoint struct {
	Trials       int64            `json:"trials"`
	Summary      analysis.Summary `json:"summary"`
	MeanAbsError float64          `json:"mean_abs_error"`
}

// ConvergeResponse is the full sweep with its spread ratios.
type ConvergeResponse struct {
	Expectation   float64         `json:"expectation"`
	Replicates    int             `json:"replicates"`
	Points        []ConvergePoint `json:"points"`
	ObservedRatio float64         `json:"observed_ratio"`
	ExpectedRatio float64         `json:"expected_ratio"`
}

// CheckRequest validates a table and reports its analytic properties
// without running any trials.
type CheckRequest struct {
	Source TableSource
}

// CheckResponse describes a validated table.
type CheckResponse struct {
	Outcomes     []dist.Outcome        `json:"outcomes"`
	Weighted     bool                  `json:"weighted"`
	Expectation  float64               `json:"expectation"`
	TableHash    core.DistributionHash `json:"table_hash"`
	ZeroVariance []float64             `json:"zero_variance,omitempty"`
}

// SimulationService orchestrates estimation runs over payout tables from
// any source, stamping each with a reproducibility manifest.
type SimulationService struct {
	estimator  ports.EstimatorPort
	tables     ports.TableLoaderPort
	scenarios  ports.ScenarioStorePort
	summarizer *analysis.Summarizer
	intervals  *analysis.Intervals
	defaults   Defaults
}

// NewSimulationService creates a simulation service.
func NewSimulationService(estimator ports.EstimatorPort, tables ports.TableLoaderPort, scenarios ports.ScenarioStorePort, defaults Defaults) *SimulationService {
	return &SimulationService{
		estimator:  estimator,
		tables:     tables,
		scenarios:  scenarios,
		summarizer: analysis.NewSummarizer(),
		intervals:  analysis.NewIntervals(),
		defaults:   defaults,
	}
}

// Run executes one estimation run: resolve the table, fix the plan, stamp
// the manifest, estimate, attach the confidence interval.
func (s *SimulationService) Run(ctx context.Context, req RunRequest) (*RunResponse, error) {
	table, scenario, err := s.resolveTable(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	table, err = applyMode(table, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("proposal mode %s: %w", req.Mode, err)
	}

	plan, err := s.resolvePlan(req.Trials, req.Seed, req.Workers, scenario)
	if err != nil {
		return nil, err
	}

	manifest := run.NewManifest(table.Hash(), table.Weighted(), plan.Seed, plan.Trials, plan.Workers, s.defaults.CodeVersion)
	result, err := s.estimator.Estimate(ctx, table, plan)
	if err != nil {
		return nil, fmt.Errorf("estimation run %s: %w", manifest.RunID, err)
	}

	level := req.Level
	if level <= 0 || level >= 1 {
		level = 0.95
	}
	lower, upper := s.intervals.MeanInterval(result.Estimate, result.StdError, result.Trials, level)

	return &RunResponse{
		Record:      run.NewRecord(*result, manifest),
		Expectation: table.Expectation(),
		Interval:    Interval{Level: level, Lower: lower, Upper: upper},
	}, nil
}

// Compare runs the plain and weighted estimators side by side on the same
// seed across a ladder of trial budgets.
func (s *SimulationService) Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error) {
	table, scenario, err := s.resolveTable(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	weighted, err := applyMode(table, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("proposal mode %s: %w", req.Mode, err)
	}
	plain, err := applyMode(table, ProposalPlain)
	if err != nil {
		return nil, err
	}

	ladder := req.Ladder
	if len(ladder) == 0 {
		base, err := s.resolvePlan(0, req.Seed, req.Workers, scenario)
		if err != nil {
			return nil, err
		}
		ladder = []int64{base.Trials}
	}

	resp := &CompareResponse{Expectation: table.Expectation()}
	for _, trials := range ladder {
		plan, err := s.resolvePlan(trials, req.Seed, req.Workers, scenario)
		if err != nil {
			return nil, err
		}

		plainRes, err := s.estimate(ctx, plain, plan)
		if err != nil {
			return nil, err
		}
		weightedRes, err := s.estimate(ctx, weighted, plan)
		if err != nil {
			return nil, err
		}

		resp.Pairs = append(resp.Pairs, ComparePair{
			Trials:            plan.Trials,
			Plain:             *plainRes,
			Weighted:          *weightedRes,
			VarianceReduction: s.intervals.VarianceReduction(plainRes.Result.Variance, weightedRes.Result.Variance),
		})
	}
	return resp, nil
}

// Converge runs replicate batches at each trial budget and summarizes how
// the replicate spread shrinks as the budget grows.
func (s *SimulationService) Converge(ctx context.Context, req ConvergeRequest) (*ConvergeResponse, error) {
	table, scenario, err := s.resolveTable(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	table, err = applyMode(table, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("proposal mode %s: %w", req.Mode, err)
	}

	counts := req.TrialCounts
	if len(counts) == 0 {
		counts = []int64{10_000, 1_000_000}
	}
	replicates := req.Replicates
	if replicates < 1 {
		replicates = 8
	}

	truth := table.Expectation()
	resp := &ConvergeResponse{Expectation: truth, Replicates: replicates}
	spreads := make([]float64, 0, len(counts))

	for _, trials := range counts {
		plan, err := s.resolvePlan(trials, req.Seed, req.Workers, scenario)
		if err != nil {
			return nil, err
		}

		estimates := make([]float64, 0, replicates)
		for r := 0; r < replicates; r++ {
			replicatePlan := plan
			replicatePlan.Seed = plan.Seed + int64(r)
			result, err := s.estimate(ctx, table, replicatePlan)
			if err != nil {
				return nil, err
			}
			estimates = append(estimates, result.Result.Estimate)
		}

		summary, err := s.summarizer.Summarize(estimates)
		if err != nil {
			return nil, fmt.Errorf("summarizing %d-trial batch: %w", plan.Trials, err)
		}
		mae, err := s.summarizer.MeanAbsoluteError(estimates, truth)
		if err != nil {
			return nil, fmt.Errorf("summarizing %d-trial batch: %w", plan.Trials, err)
		}

		resp.Points = append(resp.Points, ConvergePoint{
			Trials:       plan.Trials,
			Summary:      *summary,
			MeanAbsError: mae,
		})
		spreads = append(spreads, summary.StdDev)
	}

	if len(counts) > 1 {
		resp.ExpectedRatio = s.intervals.ExpectedErrorRatio(counts[0], counts[len(counts)-1])
		resp.ObservedRatio = spreadRatio(spreads[0], spreads[len(spreads)-1])
	}
	return resp, nil
}

// Check validates a table and reports its analytic properties.
func (s *SimulationService) Check(ctx context.Context, req CheckRequest) (*CheckResponse, error) {
	table, _, err := s.resolveTable(ctx, req.Source)
	if err != nil {
		return nil, err
	}

	resp := &CheckResponse{
		Outcomes:    table.Outcomes(),
		Weighted:    table.Weighted(),
		Expectation: table.Expectation(),
		TableHash:   table.Hash(),
	}
	if proposal, err := table.ZeroVarianceProposal(); err == nil {
		resp.ZeroVariance = proposal
	}
	return resp, nil
}

// Scenarios lists the scenario catalog.
func (s *SimulationService) Scenarios(ctx context.Context) ([]string, error) {
	if s.scenarios == nil {
		return nil, nil
	}
	return s.scenarios.List(ctx)
}

// estimate runs one estimation call with its own manifest-stamped record.
func (s *SimulationService) estimate(ctx context.Context, table *dist.Distribution, plan ports.TrialPlan) (*run.Record, error) {
	manifest := run.NewManifest(table.Hash(), table.Weighted(), plan.Seed, plan.Trials, plan.Workers, s.defaults.CodeVersion)
	result, err := s.estimator.Estimate(ctx, table, plan)
	if err != nil {
		return nil, fmt.Errorf("estimation run %s: %w", manifest.RunID, err)
	}
	rec := run.NewRecord(*result, manifest)
	return &rec, nil
}

// resolveTable picks the payout table from the request source. A scenario
// source also returns the scenario so its plan can fill request gaps.
func (s *SimulationService) resolveTable(ctx context.Context, src TableSource) (*dist.Distribution, *ports.Scenario, error) {
	switch {
	case src.Table != nil:
		return src.Table, nil, nil
	case src.Scenario != "":
		if s.scenarios == nil {
			return nil, nil, apperrors.InvalidInput("no scenario store configured")
		}
		scenario, err := s.scenarios.Load(ctx, src.Scenario)
		if err != nil {
			return nil, nil, fmt.Errorf("loading scenario %s: %w", src.Scenario, err)
		}
		return scenario.Table, scenario, nil
	case src.TablePath != "":
		if s.tables == nil {
			return nil, nil, apperrors.InvalidInput("no table loader configured")
		}
		table, err := s.tables.Load(ctx, src.TablePath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading table %s: %w", src.TablePath, err)
		}
		return table, nil, nil
	default:
		return nil, nil, apperrors.InvalidInput("no payout table given: set a table, scenario, or path")
	}
}

// resolvePlan fills unset plan fields from the scenario and the service
// defaults, then enforces the hard limits.
func (s *SimulationService) resolvePlan(trials int64, seed *int64, workers int, scenario *ports.Scenario) (ports.TrialPlan, error) {
	plan := ports.TrialPlan{Trials: trials, Workers: workers}

	if plan.Trials <= 0 {
		if scenario != nil && scenario.Plan.Trials > 0 {
			plan.Trials = scenario.Plan.Trials
		} else {
			plan.Trials = s.defaults.Trials
		}
	}
	switch {
	case seed != nil:
		plan.Seed = *seed
	case scenario != nil && scenario.Plan.Seed != 0:
		plan.Seed = scenario.Plan.Seed
	default:
		plan.Seed = s.defaults.Seed
	}
	if plan.Workers <= 0 {
		if scenario != nil && scenario.Plan.Workers > 0 {
			plan.Workers = scenario.Plan.Workers
		} else {
			plan.Workers = s.defaults.MaxWorkers
		}
	}

	if s.defaults.MaxTrials > 0 && plan.Trials > s.defaults.MaxTrials {
		return ports.TrialPlan{}, apperrors.InvalidInput(
			fmt.Sprintf("trials %d exceeds the limit %d", plan.Trials, s.defaults.MaxTrials))
	}
	if s.defaults.MaxWorkers > 0 && plan.Workers > s.defaults.MaxWorkers {
		plan.Workers = s.defaults.MaxWorkers
	}
	return plan, nil
}

// applyMode rewrites the table's proposal column for the requested mode.
func applyMode(table *dist.Distribution, mode ProposalMode) (*dist.Distribution, error) {
	switch mode {
	case ProposalAsGiven, "":
		return table, nil
	case ProposalPlain:
		return dist.Unweighted(table.Outcomes())
	case ProposalZeroVariance:
		proposal, err := table.ZeroVarianceProposal()
		if err != nil {
			return nil, err
		}
		return table.WithProposal(proposal)
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown proposal mode %q", mode))
	}
}

// spreadRatio is the observed shrink between the first and last replicate
// spreads of a sweep.
func spreadRatio(first, last float64) float64 {
	switch {
	case last > 0:
		return first / last
	case first > 0:
		return math.Inf(1)
	default:
		return 1
	}
}
