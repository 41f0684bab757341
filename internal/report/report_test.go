package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"gomonte/domain/run"
)

func sampleRecord(weighted bool, estimate float64) run.Record {
	manifest := run.NewManifest("a1b2c3", weighted, 42, 200000, 4, "dev")
	result := run.Result{
		Estimate: estimate,
		Trials:   200000,
		Seed:     42,
		Workers:  4,
		Weighted: weighted,
		Variance: 0.0352,
		StdError: 0.00042,
		Min:      0.2,
		Max:      20.0,
		Elapsed:  12 * time.Millisecond,
	}
	return run.NewRecord(result, manifest)
}

func TestRenderRun_Markdown(t *testing.T) {
	truth := 0.315
	view := RunView{
		Record:   sampleRecord(true, 0.31482),
		Truth:    &truth,
		Interval: &Interval{Level: 0.95, Lower: 0.31400, Upper: 0.31565},
	}

	out, err := NewRenderer().RenderRun(view, FormatMarkdown)
	if err != nil {
		t.Fatalf("RenderRun failed: %v", err)
	}

	for _, want := range []string{
		"# Estimation run",
		"Estimate: 0.315",
		"Trials: 200000",
		"Mode: weighted",
		"95% interval: [0.314, 0.316]",
		"Analytic expectation: 0.315",
		"Fingerprint: " + view.Record.Manifest.Fingerprint.Fingerprint.Short(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown report missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderRun_TextStripsMarkdown(t *testing.T) {
	view := RunView{Record: sampleRecord(false, 0.31482)}

	out, err := NewRenderer().RenderRun(view, FormatText)
	if err != nil {
		t.Fatalf("RenderRun failed: %v", err)
	}
	if strings.Contains(out, "# ") || strings.Contains(out, "- ") {
		t.Errorf("text report kept markdown syntax:\n%s", out)
	}
	if !strings.Contains(out, "ESTIMATION RUN") {
		t.Errorf("text report missing title:\n%s", out)
	}
	if !strings.Contains(out, "Mode: plain") {
		t.Errorf("text report missing mode line:\n%s", out)
	}
}

func TestRenderRun_HTML(t *testing.T) {
	view := RunView{Record: sampleRecord(true, 0.31482)}

	out, err := NewRenderer().RenderRun(view, FormatHTML)
	if err != nil {
		t.Fatalf("RenderRun failed: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<li>") {
		t.Errorf("HTML report missing expected tags:\n%s", out)
	}
}

func TestRenderRun_DefaultsToMarkdown(t *testing.T) {
	view := RunView{Record: sampleRecord(true, 0.31482)}

	out, err := NewRenderer().RenderRun(view, "")
	if err != nil {
		t.Fatalf("RenderRun failed: %v", err)
	}
	if !strings.HasPrefix(out, "# Estimation run") {
		t.Errorf("empty format should render markdown, got:\n%s", out)
	}
}

func TestRenderRun_RejectsUnknownFormat(t *testing.T) {
	view := RunView{Record: sampleRecord(true, 0.31482)}

	if _, err := NewRenderer().RenderRun(view, Format("pdf")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func comparePair(reduction float64) ComparePair {
	return ComparePair{
		Trials:            20000,
		Plain:             sampleRecord(false, 0.31923),
		Weighted:          sampleRecord(true, 0.31488),
		VarianceReduction: reduction,
	}
}

func TestRenderComparison_Markdown(t *testing.T) {
	view := CompareView{Truth: 0.315, Pairs: []ComparePair{comparePair(5.2)}}

	out, err := NewRenderer().RenderComparison(view, FormatMarkdown)
	if err != nil {
		t.Fatalf("RenderComparison failed: %v", err)
	}
	for _, want := range []string{
		"| Trials | Plain | Weighted |",
		"| 20000 | 0.319 | 0.315 |",
		"| 5.2x |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("comparison report missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderComparison_ExactReduction(t *testing.T) {
	view := CompareView{Truth: 0.315, Pairs: []ComparePair{comparePair(math.Inf(1))}}

	out, err := NewRenderer().RenderComparison(view, FormatMarkdown)
	if err != nil {
		t.Fatalf("RenderComparison failed: %v", err)
	}
	if !strings.Contains(out, "| exact |") {
		t.Errorf("comparison report missing exact marker:\n%s", out)
	}
}

func TestRenderComparison_HTMLTable(t *testing.T) {
	view := CompareView{Truth: 0.315, Pairs: []ComparePair{comparePair(5.2)}}

	out, err := NewRenderer().RenderComparison(view, FormatHTML)
	if err != nil {
		t.Fatalf("RenderComparison failed: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("HTML comparison missing table markup:\n%s", out)
	}
}

func TestRenderConvergence(t *testing.T) {
	view := ConvergeView{
		Truth: 0.315,
		Points: []ConvergePoint{
			{Trials: 10000, Estimate: 0.3212, AbsError: 0.0062, StdError: 0.0019},
			{Trials: 1000000, Estimate: 0.3151, AbsError: 0.0001, StdError: 0.00019},
		},
		ExpectedRatio: 10,
		ObservedRatio: 62,
	}

	out, err := NewRenderer().RenderConvergence(view, FormatMarkdown)
	if err != nil {
		t.Fatalf("RenderConvergence failed: %v", err)
	}
	for _, want := range []string{
		"# Convergence sweep",
		"| 10000 | 0.321 |",
		"| 1000000 | 0.315 |",
		"root-n law",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("convergence report missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderConvergence_Text(t *testing.T) {
	view := ConvergeView{
		Truth:         0.315,
		Points:        []ConvergePoint{{Trials: 10000, Estimate: 0.3212, AbsError: 0.0062, StdError: 0.0019}},
		ExpectedRatio: 1,
		ObservedRatio: 1,
	}

	out, err := NewRenderer().RenderConvergence(view, FormatText)
	if err != nil {
		t.Fatalf("RenderConvergence failed: %v", err)
	}
	if strings.Contains(out, "|") {
		t.Errorf("text convergence report kept table pipes:\n%s", out)
	}
	if !strings.Contains(out, "10000  0.321") {
		t.Errorf("text convergence report missing flattened row:\n%s", out)
	}
}
