package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gomonte/domain/core"
	"gomonte/domain/run"
)

// Format selects the rendering of a report.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// displayDecimals fixes how estimates are rounded for human-facing
// output. Stored results keep full precision; rounding happens here and
// nowhere else.
const displayDecimals = 3

// Interval is a rendered confidence interval.
type Interval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// RunView is everything a single-run report shows.
type RunView struct {
	Record   run.Record
	Truth    *float64
	Interval *Interval
}

// ComparePair is one rung of a plain-versus-weighted ladder.
type ComparePair struct {
	Trials            int64
	Plain             run.Record
	Weighted          run.Record
	VarianceReduction float64
}

// CompareView is a plain-versus-weighted ladder over one table.
type CompareView struct {
	Truth float64
	Pairs []ComparePair
}

// ConvergePoint is one rung of a trial-budget sweep.
type ConvergePoint struct {
	Trials   int64   `json:"trials"`
	Estimate float64 `json:"estimate"`
	AbsError float64 `json:"abs_error"`
	StdError float64 `json:"std_error"`
}

// ConvergeView is a full sweep against a known expectation.
type ConvergeView struct {
	Truth         float64
	Points        []ConvergePoint
	ExpectedRatio float64
	ObservedRatio float64
}

// Renderer renders run reports as text, markdown, or HTML.
type Renderer struct{}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderRun renders a single-run report.
func (r *Renderer) RenderRun(view RunView, format Format) (string, error) {
	res := view.Record.Result

	var b strings.Builder
	fmt.Fprintf(&b, "# Estimation run %s\n\n", view.Record.RunID)
	fmt.Fprintf(&b, "- Estimate: %s\n", r.num(res.Estimate))
	fmt.Fprintf(&b, "- Trials: %d\n", res.Trials)
	fmt.Fprintf(&b, "- Seed: %d, workers: %d\n", res.Seed, res.Workers)
	fmt.Fprintf(&b, "- Mode: %s\n", mode(res.Weighted))
	fmt.Fprintf(&b, "- Std error: %.3g, variance: %.3g\n", res.StdError, res.Variance)
	fmt.Fprintf(&b, "- Range: [%s, %s]\n", r.num(res.Min), r.num(res.Max))
	if view.Interval != nil {
		fmt.Fprintf(&b, "- %.0f%% interval: [%s, %s]\n",
			view.Interval.Level*100, r.num(view.Interval.Lower), r.num(view.Interval.Upper))
	}
	if view.Truth != nil {
		fmt.Fprintf(&b, "- Analytic expectation: %s (error %.3g)\n",
			r.num(*view.Truth), res.AbsoluteError(*view.Truth))
	}
	if view.Record.Manifest != nil {
		fmt.Fprintf(&b, "- Fingerprint: %s\n", view.Record.Manifest.Fingerprint.Fingerprint.Short())
	}

	return r.finish(b.String(), format)
}

// RenderComparison renders a plain-versus-weighted ladder report.
func (r *Renderer) RenderComparison(view CompareView, format Format) (string, error) {
	var b strings.Builder
	b.WriteString("# Plain vs weighted estimation\n\n")
	fmt.Fprintf(&b, "Analytic expectation: %s\n\n", r.num(view.Truth))

	b.WriteString("| Trials | Plain | Weighted | Plain SE | Weighted SE | Reduction |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, pair := range view.Pairs {
		fmt.Fprintf(&b, "| %d | %s | %s | %.3g | %.3g | %s |\n",
			pair.Trials,
			r.num(pair.Plain.Result.Estimate), r.num(pair.Weighted.Result.Estimate),
			pair.Plain.Result.StdError, pair.Weighted.Result.StdError,
			reduction(pair.VarianceReduction))
	}

	b.WriteString("\nReduction is the plain per-trial variance over the weighted one.\n")
	return r.finish(b.String(), format)
}

// reduction renders a variance-reduction factor, marking the ideal
// proposal's zero-variance case.
func reduction(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "exact"
	case math.IsNaN(v):
		return "n/a"
	default:
		return fmt.Sprintf("%.3gx", v)
	}
}

// RenderConvergence renders a trial-budget sweep report.
func (r *Renderer) RenderConvergence(view ConvergeView, format Format) (string, error) {
	var b strings.Builder
	b.WriteString("# Convergence sweep\n\n")
	fmt.Fprintf(&b, "Analytic expectation: %s\n\n", r.num(view.Truth))

	b.WriteString("| Trials | Estimate | Abs error | Std error |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, p := range view.Points {
		fmt.Fprintf(&b, "| %d | %s | %.3g | %.3g |\n", p.Trials, r.num(p.Estimate), p.AbsError, p.StdError)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Error ratio first to last: %.3g observed, %.3g expected by the root-n law\n",
		view.ObservedRatio, view.ExpectedRatio)

	return r.finish(b.String(), format)
}

// finish converts the markdown draft into the requested format.
func (r *Renderer) finish(md string, format Format) (string, error) {
	switch format {
	case FormatMarkdown, "":
		return md, nil
	case FormatText:
		return stripMarkdown(md), nil
	case FormatHTML:
		p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
		renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
		return string(markdown.ToHTML([]byte(md), p, renderer)), nil
	default:
		return "", core.NewValidationError("report", fmt.Sprintf("unknown format %q", format))
	}
}

// num renders an estimate at display precision.
func (r *Renderer) num(v float64) string {
	return fmt.Sprintf("%.*f", displayDecimals, v)
}

func mode(weighted bool) string {
	if weighted {
		return "weighted"
	}
	return "plain"
}

// stripMarkdown flattens the markdown draft into plain terminal text.
func stripMarkdown(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "# "):
			out = append(out, strings.ToUpper(strings.TrimPrefix(line, "# ")))
		case strings.HasPrefix(line, "|---"):
			continue
		case strings.HasPrefix(line, "| "):
			trimmed := strings.Trim(line, "|")
			cells := strings.Split(trimmed, "|")
			for i, c := range cells {
				cells[i] = strings.TrimSpace(c)
			}
			out = append(out, strings.Join(cells, "  "))
		case strings.HasPrefix(line, "- "):
			out = append(out, strings.TrimPrefix(line, "- "))
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
