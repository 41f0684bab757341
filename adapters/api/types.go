package api

import (
	"gomonte/app"
	"gomonte/domain/dist"
	apperrors "gomonte/internal/errors"
)

// OutcomeBody is one outcome row of an inline request table.
type OutcomeBody struct {
	Label       string   `json:"label,omitempty"`
	Probability float64  `json:"probability"`
	Payoff      float64  `json:"payoff"`
	Proposal    *float64 `json:"proposal,omitempty"`
}

// TableBody is an inline payout table.
type TableBody struct {
	Outcomes []OutcomeBody `json:"outcomes"`
}

// SimulationBody is the request shape for run and report calls. The table
// comes inline or by scenario name; unset plan fields fall to defaults.
type SimulationBody struct {
	Table    *TableBody `json:"table,omitempty"`
	Scenario string     `json:"scenario,omitempty"`
	Trials   int64      `json:"trials,omitempty"`
	Seed     *int64     `json:"seed,omitempty"`
	Workers  int        `json:"workers,omitempty"`
	Mode     string     `json:"mode,omitempty"`
	Level    float64    `json:"level,omitempty"`
}

// CompareBody is the request shape for plain-versus-weighted ladders.
type CompareBody struct {
	Table    *TableBody `json:"table,omitempty"`
	Scenario string     `json:"scenario,omitempty"`
	Ladder   []int64    `json:"ladder,omitempty"`
	Seed     *int64     `json:"seed,omitempty"`
	Workers  int        `json:"workers,omitempty"`
	Mode     string     `json:"mode,omitempty"`
}

// ConvergeBody is the request shape for replicate sweeps.
type ConvergeBody struct {
	Table       *TableBody `json:"table,omitempty"`
	Scenario    string     `json:"scenario,omitempty"`
	TrialCounts []int64    `json:"trial_counts,omitempty"`
	Replicates  int        `json:"replicates,omitempty"`
	Seed        *int64     `json:"seed,omitempty"`
	Workers     int        `json:"workers,omitempty"`
	Mode        string     `json:"mode,omitempty"`
}

// ReportBody asks for a rendered run report.
type ReportBody struct {
	SimulationBody
	Format string `json:"format,omitempty"`
}

// ErrorBody is the uniform error response.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// source maps the request's table fields onto an app table source.
func (b SimulationBody) source() (app.TableSource, error) {
	src := app.TableSource{Scenario: b.Scenario}
	if b.Table != nil {
		table, err := buildTable(b.Table.Outcomes)
		if err != nil {
			return app.TableSource{}, err
		}
		src.Table = table
	}
	return src, nil
}

// buildTable validates an inline table. The proposal column is all or
// nothing; a partial column would silently zero the missing entries.
func buildTable(rows []OutcomeBody) (*dist.Distribution, error) {
	if len(rows) == 0 {
		return nil, apperrors.InvalidInput("table has no outcomes")
	}

	outcomes := make([]dist.Outcome, len(rows))
	withProposal := 0
	for i, row := range rows {
		outcomes[i] = dist.Outcome{
			Label:       row.Label,
			Probability: row.Probability,
			Payoff:      row.Payoff,
		}
		if row.Proposal != nil {
			outcomes[i].Proposal = *row.Proposal
			withProposal++
		}
	}

	switch withProposal {
	case 0:
		return dist.Unweighted(outcomes)
	case len(rows):
		return dist.New(outcomes)
	default:
		return nil, apperrors.InvalidInput("proposal must be set on every outcome or none")
	}
}
