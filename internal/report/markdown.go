package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"text/tabwriter"

	"StockAnalyzer/internal/model"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var cagrRows = []struct {
	label string
	pick  func(model.GrowthSet) model.Value
}{
	{"Revenue", func(g model.GrowthSet) model.Value { return g.Revenue }},
	{"Operating Profit", func(g model.GrowthSet) model.Value { return g.OperatingProfit }},
	{"PAT", func(g model.GrowthSet) model.Value { return g.ProfitAfterTax }},
	{"EPS", func(g model.GrowthSet) model.Value { return g.EPS }},
}

func yearLabel(y int) string { return fmt.Sprintf("FY%d", y) }

func severityMark(s model.Severity) string {
	switch s {
	case model.SeverityPositive:
		return "+"
	case model.SeverityCaution:
		return "!"
	case model.SeverityNegative:
		return "-"
	default:
		return "~"
	}
}

func hasDerivedEPS(s *model.DerivedMetricSeries) bool {
	for _, y := range s.Years {
		if y.EPSSource == model.EPSDerived {
			return true
		}
	}
	return false
}

func cell(c column, y model.YearMetrics) string {
	v := c.format(c.pick(y))
	if c.field == "eps" && y.EPSSource == model.EPSDerived {
		v += "*"
	}
	return v
}

// Markdown renders a as a GitHub-flavoured Markdown document.
func Markdown(a *model.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Symbol)
	fmt.Fprintf(&b, "_Source: %s, generated %s_\n\n", a.Source, a.GeneratedAt.Format("2006-01-02 15:04"))

	s := a.Metrics
	if s == nil || s.Len() == 0 {
		b.WriteString("No financial data.\n")
		return b.String()
	}

	b.WriteString("## Financials\n\n| Metric |")
	for _, y := range s.Years {
		fmt.Fprintf(&b, " %s |", yearLabel(y.FiscalYear))
	}
	b.WriteString("\n|---|")
	for range s.Years {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for _, c := range columns {
		fmt.Fprintf(&b, "| %s |", c.label)
		for _, y := range s.Years {
			fmt.Fprintf(&b, " %s |", cell(c, y))
		}
		b.WriteString("\n")
	}
	if hasDerivedEPS(s) {
		b.WriteString("\n\\* EPS derived from PAT and shares outstanding.\n")
	}

	first, last := s.Years[0].FiscalYear, s.Years[len(s.Years)-1].FiscalYear
	fmt.Fprintf(&b, "\n## CAGR (%s to %s)\n\n| Metric | CAGR |\n|---|---:|\n", yearLabel(first), yearLabel(last))
	for _, r := range cagrRows {
		fmt.Fprintf(&b, "| %s | %s |\n", r.label, FormatPercent(r.pick(s.CAGR)))
	}

	b.WriteString("\n## Insights\n\n")
	if len(a.Insights) == 0 {
		b.WriteString("No insights: not enough data.\n")
	}
	for _, in := range a.Insights {
		fmt.Fprintf(&b, "- `%s` **%s**: %s\n", severityMark(in.Severity), in.Category, in.Text)
	}
	return b.String()
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML renders a as a standalone HTML page.
func HTML(a *model.Analysis) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(a)), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s financial analysis</title>\n", html.EscapeString(a.Symbol))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// JSON renders a as indented JSON. NA values are null.
func JSON(a *model.Analysis) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// Text renders a as an aligned plain-text table for terminals.
func Text(a *model.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n\n", a.Symbol, a.Source)

	s := a.Metrics
	if s == nil || s.Len() == 0 {
		b.WriteString("No financial data.\n")
		return b.String()
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, y := range s.Years {
		fmt.Fprintf(tw, "%s\t", yearLabel(y.FiscalYear))
	}
	fmt.Fprintln(tw)
	for _, c := range columns {
		fmt.Fprintf(tw, "%s\t", c.label)
		for _, y := range s.Years {
			fmt.Fprintf(tw, "%s\t", cell(c, y))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	b.WriteString("\nCAGR:")
	for _, r := range cagrRows {
		fmt.Fprintf(&b, " %s %s;", r.label, FormatPercent(r.pick(s.CAGR)))
	}
	b.WriteString("\n\n")
	for _, in := range a.Insights {
		fmt.Fprintf(&b, "[%s] %s\n", severityMark(in.Severity), in.Text)
	}
	return b.String()
}
