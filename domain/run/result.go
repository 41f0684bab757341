package run

import (
	"time"

	"gomonte/domain/core"
)

// Result is the numeric outcome of one estimation run: the weighted-payoff
// mean plus the spread statistics the run accumulated along the way.
type Result struct {
	Estimate float64       `json:"estimate"`
	Trials   int64         `json:"trials"`
	Seed     int64         `json:"seed"`
	Workers  int           `json:"workers"`
	Weighted bool          `json:"weighted"`
	Variance float64       `json:"variance"`
	StdError float64       `json:"std_error"`
	Min      float64       `json:"min"`
	Max      float64       `json:"max"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// TrialsPerSecond reports run throughput, zero when nothing was timed.
func (r *Result) TrialsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Trials) / r.Elapsed.Seconds()
}

// AbsoluteError is the distance from a known analytic expectation. Used by
// convergence sweeps where the truth is computable from the table itself.
func (r *Result) AbsoluteError(truth float64) float64 {
	d := r.Estimate - truth
	if d < 0 {
		return -d
	}
	return d
}

// Record pairs a result with its identity and provenance so callers can
// hold several runs side by side.
type Record struct {
	RunID     core.RunID     `json:"run_id"`
	Result    Result         `json:"result"`
	Manifest  *Manifest      `json:"manifest,omitempty"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// NewRecord stamps a result with its run ID and creation time. The ID
// comes from the manifest when one exists so the two never diverge.
func NewRecord(result Result, manifest *Manifest) Record {
	rec := Record{
		Result:    result,
		Manifest:  manifest,
		CreatedAt: core.Now(),
	}
	if manifest != nil {
		rec.RunID = manifest.RunID
	} else {
		rec.RunID = core.NewRunID()
	}
	return rec
}
