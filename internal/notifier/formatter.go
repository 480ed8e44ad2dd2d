package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/report"
)

func severityIcon(s model.Severity) string {
	switch s {
	case model.SeverityPositive:
		return "✅"
	case model.SeverityCaution:
		return "⚠️"
	case model.SeverityNegative:
		return "🔻"
	default:
		return "ℹ️"
	}
}

// FormatAnalysis formats an analysis into a Telegram HTML message.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(a.Symbol), a.GeneratedAt.Format("2006-01-02")))

	s := a.Metrics
	if s == nil || s.Len() == 0 {
		b.WriteString("No financial data available.")
		return b.String()
	}

	// Per-year table
	b.WriteString("<pre>")
	b.WriteString(fmt.Sprintf("%-6s %14s %8s %14s %10s\n", "FY", "Revenue", "OPM", "PAT", "EPS"))
	for _, y := range s.Years {
		b.WriteString(fmt.Sprintf("%-6d %14s %8s %14s %10s\n",
			y.FiscalYear,
			report.FormatAmount(y.Revenue),
			report.FormatPercent(y.OperatingMargin),
			report.FormatAmount(y.ProfitAfterTax),
			report.FormatPerShare(y.EPS)))
	}
	b.WriteString("</pre>\n")

	// CAGR
	if s.Periods > 0 {
		b.WriteString(fmt.Sprintf("📈 <b>CAGR (%d yrs):</b>\n", s.Periods))
		b.WriteString(fmt.Sprintf("  Revenue %s | PAT %s | EPS %s\n\n",
			report.FormatPercent(s.CAGR.Revenue),
			report.FormatPercent(s.CAGR.ProfitAfterTax),
			report.FormatPercent(s.CAGR.EPS)))
	}

	// Insights
	if len(a.Insights) > 0 {
		b.WriteString("💡 <b>Insights:</b>\n")
		for _, in := range a.Insights {
			b.WriteString(fmt.Sprintf("%s %s\n", severityIcon(in.Severity), html.EscapeString(in.Text)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// DigestItem is one watchlist entry of a digest. Err is set when the
// analysis failed.
type DigestItem struct {
	Query    string
	Analysis *model.Analysis
	Err      error
}

// FormatDigest formats a compact one-line-per-symbol watchlist summary.
func FormatDigest(items []DigestItem) string {
	var b strings.Builder
	b.WriteString("🗓 <b>Watchlist digest</b>\n\n")
	if len(items) == 0 {
		b.WriteString("Watchlist is empty.")
		return b.String()
	}
	for _, it := range items {
		if it.Err != nil || it.Analysis == nil || it.Analysis.Metrics == nil {
			b.WriteString(fmt.Sprintf("❌ <b>%s</b>: %s\n", html.EscapeString(it.Query), html.EscapeString(errText(it.Err))))
			continue
		}
		a := it.Analysis
		latest, _ := a.Metrics.Latest()
		b.WriteString(fmt.Sprintf("• <b>%s</b> Rev CAGR %s | OPM %s | NPM %s\n",
			html.EscapeString(a.Symbol),
			report.FormatPercent(a.Metrics.CAGR.Revenue),
			report.FormatPercent(latest.OperatingMargin),
			report.FormatPercent(latest.NetMargin)))
		if len(a.Insights) > 0 {
			top := a.Insights[0]
			b.WriteString(fmt.Sprintf("   %s %s\n", severityIcon(top.Severity), html.EscapeString(top.Text)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func errText(err error) string {
	if err == nil {
		return "no data"
	}
	return err.Error()
}

// FormatError formats a failed /analyze request.
func FormatError(query string, err error) string {
	return fmt.Sprintf("❌ Could not analyze <b>%s</b>: %s", html.EscapeString(query), html.EscapeString(errText(err)))
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("🤖 <b>Stock Analyzer</b>\n\n")
	b.WriteString("/analyze &lt;symbol&gt; - margins, growth and insights (e.g. /analyze RELIANCE)\n")
	b.WriteString("/watchlist - digest of all watched symbols\n")
	b.WriteString("/help - this message")
	return b.String()
}
