package analysis

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	estimates := []float64{0.31, 0.32, 0.30, 0.33, 0.315}

	summary, err := NewSummarizer().Summarize(estimates)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if summary.Count != 5 {
		t.Errorf("Count = %d, want 5", summary.Count)
	}
	if math.Abs(summary.Mean-0.315) > 1e-12 {
		t.Errorf("Mean = %v, want 0.315", summary.Mean)
	}
	if summary.Min != 0.30 || summary.Max != 0.33 {
		t.Errorf("Min/Max = %v/%v, want 0.30/0.33", summary.Min, summary.Max)
	}
	if math.Abs(summary.Median-0.315) > 1e-12 {
		t.Errorf("Median = %v, want 0.315", summary.Median)
	}
	if summary.StdDev <= 0 {
		t.Errorf("StdDev = %v, want positive", summary.StdDev)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if _, err := NewSummarizer().Summarize(nil); err == nil {
		t.Errorf("Summarize accepted an empty batch")
	}
}

func TestMeanAbsoluteError(t *testing.T) {
	estimates := []float64{0.32, 0.31, 0.315}

	mae, err := NewSummarizer().MeanAbsoluteError(estimates, 0.315)
	if err != nil {
		t.Fatalf("MeanAbsoluteError failed: %v", err)
	}
	if math.Abs(mae-(0.005+0.005+0)/3) > 1e-12 {
		t.Errorf("MeanAbsoluteError = %v, want %v", mae, (0.005+0.005+0)/3)
	}
}

func TestMeanInterval_StudentT(t *testing.T) {
	iv := NewIntervals()

	// n=5, df=4, 95% two-sided critical value is 2.7764451052.
	lower, upper := iv.MeanInterval(0.315, 0.01, 5, 0.95)
	wantMargin := 2.7764451052 * 0.01
	if math.Abs((upper-lower)/2-wantMargin) > 1e-6 {
		t.Errorf("half width = %v, want %v", (upper-lower)/2, wantMargin)
	}
	if math.Abs((upper+lower)/2-0.315) > 1e-12 {
		t.Errorf("interval not centered on the estimate")
	}
}

func TestMeanInterval_LargeSampleNormal(t *testing.T) {
	iv := NewIntervals()

	// Past the cutoff the critical value is the normal 1.9599639845.
	lower, upper := iv.MeanInterval(0.315, 0.0004, 1000000, 0.95)
	wantMargin := 1.9599639845 * 0.0004
	if math.Abs((upper-lower)/2-wantMargin) > 1e-9 {
		t.Errorf("half width = %v, want %v", (upper-lower)/2, wantMargin)
	}
}

func TestMeanInterval_Degenerate(t *testing.T) {
	iv := NewIntervals()

	lower, upper := iv.MeanInterval(0.315, 0, 1000, 0.95)
	if lower != 0.315 || upper != 0.315 {
		t.Errorf("zero spread should collapse the interval, got [%v, %v]", lower, upper)
	}

	lower, upper = iv.MeanInterval(0.315, 0.01, 1, 0.95)
	if lower != 0.315 || upper != 0.315 {
		t.Errorf("single trial should collapse the interval, got [%v, %v]", lower, upper)
	}
}

func TestCovers(t *testing.T) {
	iv := NewIntervals()

	if !iv.Covers(0.30, 0.33, 0.315) {
		t.Errorf("interval [0.30, 0.33] should cover 0.315")
	}
	if iv.Covers(0.32, 0.33, 0.315) {
		t.Errorf("interval [0.32, 0.33] should not cover 0.315")
	}
}

func TestVarianceReduction(t *testing.T) {
	iv := NewIntervals()

	if got := iv.VarianceReduction(0.035, 0.007); math.Abs(got-5) > 1e-12 {
		t.Errorf("VarianceReduction = %v, want 5", got)
	}
	if got := iv.VarianceReduction(0.035, 0); !math.IsInf(got, 1) {
		t.Errorf("ideal proposal should report infinite reduction, got %v", got)
	}
	if got := iv.VarianceReduction(0, 0); got != 1 {
		t.Errorf("degenerate comparison = %v, want 1", got)
	}
}

func TestExpectedErrorRatio(t *testing.T) {
	iv := NewIntervals()

	if got := iv.ExpectedErrorRatio(10000, 1000000); math.Abs(got-10) > 1e-12 {
		t.Errorf("ExpectedErrorRatio = %v, want 10", got)
	}
	if got := iv.ExpectedErrorRatio(0, 100); got != 1 {
		t.Errorf("invalid budgets should fall back to 1, got %v", got)
	}
}
