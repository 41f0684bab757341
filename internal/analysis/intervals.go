package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// largeSampleCutoff is the trial count past which the Student-t quantile
// is indistinguishable from the normal one.
const largeSampleCutoff = 100000

// Intervals computes confidence intervals and convergence expectations
// for run results.
type Intervals struct{}

// NewIntervals creates an intervals utility.
func NewIntervals() *Intervals {
	return &Intervals{}
}

// MeanInterval computes the confidence interval around a run's estimate
// from its standard error. Student-t below the large-sample cutoff,
// normal above it.
func (iv *Intervals) MeanInterval(estimate, stdError float64, trials int64, confidenceLevel float64) (lower, upper float64) {
	if trials < 2 || stdError <= 0 {
		return estimate, estimate
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		confidenceLevel = 0.95
	}

	alpha := 1.0 - confidenceLevel
	p := 1.0 - alpha/2.0

	var critical float64
	if trials > largeSampleCutoff {
		critical = distuv.UnitNormal.Quantile(p)
	} else {
		critical = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(trials - 1)}.Quantile(p)
	}

	margin := critical * stdError
	return estimate - margin, estimate + margin
}

// Covers reports whether the interval contains the value.
func (iv *Intervals) Covers(lower, upper, value float64) bool {
	return lower <= value && value <= upper
}

// VarianceReduction is the factor by which a proposal shrinks the
// per-trial variance against the plain estimator. Infinite for an ideal
// proposal, 1 when nothing changed.
func (iv *Intervals) VarianceReduction(plainVariance, weightedVariance float64) float64 {
	if weightedVariance == 0 {
		if plainVariance == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return plainVariance / weightedVariance
}

// ExpectedErrorRatio is the error shrink the root-n law predicts when the
// trial budget grows from small to large.
func (iv *Intervals) ExpectedErrorRatio(trialsSmall, trialsLarge int64) float64 {
	if trialsSmall <= 0 || trialsLarge <= 0 {
		return 1
	}
	return math.Sqrt(float64(trialsLarge) / float64(trialsSmall))
}
