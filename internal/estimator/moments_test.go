package estimator

import (
	"math"
	"testing"

	"github.com/montanaflynn/stats"
)

func TestMoments_MatchesDirectComputation(t *testing.T) {
	samples := []float64{0.2, 1.0, 0.3, 0.5, 0.2, 0.2, 1.0, 0.3}

	acc := newMoments()
	for _, x := range samples {
		acc.add(x)
	}

	wantMean, err := stats.Mean(samples)
	if err != nil {
		t.Fatalf("stats.Mean failed: %v", err)
	}
	wantVar, err := stats.SampleVariance(samples)
	if err != nil {
		t.Fatalf("stats.SampleVariance failed: %v", err)
	}

	if math.Abs(acc.mean-wantMean) > 1e-12 {
		t.Errorf("mean = %v, want %v", acc.mean, wantMean)
	}
	if math.Abs(acc.variance()-wantVar) > 1e-12 {
		t.Errorf("variance = %v, want %v", acc.variance(), wantVar)
	}
	if acc.min != 0.2 || acc.max != 1.0 {
		t.Errorf("min/max = %v/%v, want 0.2/1.0", acc.min, acc.max)
	}
}

func TestMoments_MergeEquivalence(t *testing.T) {
	samples := []float64{0.1, 0.9, 0.3, 0.7, 0.5, 0.2, 0.8, 0.4, 0.6, 1.0}

	whole := newMoments()
	for _, x := range samples {
		whole.add(x)
	}

	left, right := newMoments(), newMoments()
	for i, x := range samples {
		if i < 3 {
			left.add(x)
		} else {
			right.add(x)
		}
	}
	left.merge(right)

	if left.n != whole.n {
		t.Errorf("merged n = %d, want %d", left.n, whole.n)
	}
	if math.Abs(left.mean-whole.mean) > 1e-12 {
		t.Errorf("merged mean = %v, want %v", left.mean, whole.mean)
	}
	if math.Abs(left.variance()-whole.variance()) > 1e-12 {
		t.Errorf("merged variance = %v, want %v", left.variance(), whole.variance())
	}
	if left.min != whole.min || left.max != whole.max {
		t.Errorf("merged min/max = %v/%v, want %v/%v", left.min, left.max, whole.min, whole.max)
	}
}

func TestMoments_MergeEmpty(t *testing.T) {
	acc := newMoments()
	acc.add(0.5)
	acc.add(0.7)

	acc.merge(newMoments())
	if acc.n != 2 || math.Abs(acc.mean-0.6) > 1e-12 {
		t.Errorf("merging an empty accumulator changed the state: n=%d mean=%v", acc.n, acc.mean)
	}

	empty := newMoments()
	empty.merge(acc)
	if empty.n != 2 || math.Abs(empty.mean-0.6) > 1e-12 {
		t.Errorf("merging into an empty accumulator lost state: n=%d mean=%v", empty.n, empty.mean)
	}
}

func TestMoments_SingleSample(t *testing.T) {
	acc := newMoments()
	acc.add(0.315)

	if acc.variance() != 0 {
		t.Errorf("variance of one sample = %v, want 0", acc.variance())
	}
	if acc.stdError() != 0 {
		t.Errorf("stdError of one sample = %v, want 0", acc.stdError())
	}
	if acc.min != 0.315 || acc.max != 0.315 {
		t.Errorf("min/max = %v/%v, want 0.315/0.315", acc.min, acc.max)
	}
}
