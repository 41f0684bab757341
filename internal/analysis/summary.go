package analysis

import (
	"github.com/montanaflynn/stats"

	"gomonte/domain/core"
)

// Summary holds replicate-level statistics over a batch of estimates,
// one entry per independent run.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Summarizer condenses replicate estimates into summary statistics.
type Summarizer struct{}

// NewSummarizer creates a summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize computes the replicate summary for a batch of estimates.
func (s *Summarizer) Summarize(estimates []float64) (*Summary, error) {
	if len(estimates) == 0 {
		return nil, core.NewValidationError("summary", "no estimates to summarize")
	}

	mean, _ := stats.Mean(estimates)
	stdDev, _ := stats.StandardDeviation(estimates)
	min, _ := stats.Min(estimates)
	max, _ := stats.Max(estimates)
	median, _ := stats.Median(estimates)
	q25, _ := stats.Percentile(estimates, 25)
	q75, _ := stats.Percentile(estimates, 75)

	return &Summary{
		Count:  len(estimates),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
		Q25:    q25,
		Q75:    q75,
	}, nil
}

// MeanAbsoluteError averages |estimate - truth| over the batch. Used by
// convergence sweeps where the analytic expectation is known.
func (s *Summarizer) MeanAbsoluteError(estimates []float64, truth float64) (float64, error) {
	if len(estimates) == 0 {
		return 0, core.NewValidationError("summary", "no estimates to summarize")
	}

	deviations := make([]float64, len(estimates))
	for i, e := range estimates {
		d := e - truth
		if d < 0 {
			d = -d
		}
		deviations[i] = d
	}
	return stats.Mean(deviations)
}
