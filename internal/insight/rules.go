package insight

import (
	"fmt"
	"strconv"
	"strings"

	"StockAnalyzer/internal/model"
)

// rule evaluates one observation. ok is false when inputs are NA or the
// rule does not fire.
type rule struct {
	name     string
	category model.Category
	eval     func(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool)
}

// rules in emission order: revenue, margin, profitability, eps.
var rules = []rule{
	{"revenue_cagr", model.CategoryRevenue, revenueCAGR},
	{"revenue_consistency", model.CategoryRevenue, revenueConsistency},
	{"operating_margin_trend", model.CategoryMargin, operatingMarginTrend},
	{"profit_cagr", model.CategoryProfitability, profitCAGR},
	{"latest_loss", model.CategoryProfitability, latestLoss},
	{"net_margin_trend", model.CategoryProfitability, netMarginTrend},
	{"thin_net_margin", model.CategoryProfitability, thinNetMargin},
	{"eps_cagr", model.CategoryEPS, epsCAGR},
	{"eps_divergence", model.CategoryEPS, epsDivergence},
}

func pct(f float64) string { return fmt.Sprintf("%.1f%%", f*100) }

func pp(f float64) string { return fmt.Sprintf("%.1f pp", f*100) }

type vars map[string]string

func render(tmpl string, v vars) string {
	pairs := make([]string, 0, len(v)*2)
	for k, val := range v {
		pairs = append(pairs, "{"+k+"}", val)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func span(s *model.DerivedMetricSeries) vars {
	return vars{
		"periods": strconv.Itoa(s.Periods),
		"from":    strconv.Itoa(s.Years[0].FiscalYear),
		"to":      strconv.Itoa(s.Years[len(s.Years)-1].FiscalYear),
	}
}

func bandInsight(bands []Band, cagr model.Value, s *model.DerivedMetricSeries) (model.Severity, string, bool) {
	rate, ok := cagr.Get()
	if !ok {
		return "", "", false
	}
	b, ok := match(bands, rate)
	if !ok || b.Text == "" {
		return "", "", false
	}
	v := span(s)
	v["rate"] = pct(rate)
	return b.Severity, render(b.Text, v), true
}

func revenueCAGR(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	return bandInsight(p.RevenueCAGR, s.CAGR.Revenue, s)
}

func profitCAGR(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	return bandInsight(p.ProfitCAGR, s.CAGR.ProfitAfterTax, s)
}

func epsCAGR(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	return bandInsight(p.EPSCAGR, s.CAGR.EPS, s)
}

// revenueConsistency needs at least two YoY figures, all available.
func revenueConsistency(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	if s.Len() < 3 {
		return "", "", false
	}
	up, down := 0, 0
	for _, y := range s.Years[1:] {
		g, ok := y.Growth.Revenue.Get()
		if !ok {
			return "", "", false
		}
		switch {
		case g > 0:
			up++
		case g < 0:
			down++
		}
	}
	n := s.Len() - 1
	switch {
	case up == n && p.Messages.RevenueEveryYear != "":
		return model.SeverityPositive, render(p.Messages.RevenueEveryYear, span(s)), true
	case down == n && p.Messages.RevenueFellEveryYear != "":
		return model.SeverityNegative, render(p.Messages.RevenueFellEveryYear, span(s)), true
	}
	return "", "", false
}

func marginTrend(s *model.DerivedMetricSeries, pick func(model.YearMetrics) model.Value, minDelta float64, expanding, contracting, stable string) (model.Severity, string, bool) {
	first, last, ok := s.FirstLastAvailable(pick)
	if !ok {
		return "", "", false
	}
	from, _ := pick(first).Get()
	to, _ := pick(last).Get()
	delta := to - from
	v := vars{
		"from":  strconv.Itoa(first.FiscalYear),
		"to":    strconv.Itoa(last.FiscalYear),
		"value": pct(to),
	}
	switch {
	case delta >= minDelta && expanding != "":
		v["delta"] = pp(delta)
		return model.SeverityPositive, render(expanding, v), true
	case delta <= -minDelta && contracting != "":
		v["delta"] = pp(-delta)
		return model.SeverityCaution, render(contracting, v), true
	case delta > -minDelta && delta < minDelta && stable != "":
		v["delta"] = pp(delta)
		return model.SeverityNeutral, render(stable, v), true
	}
	return "", "", false
}

func operatingMarginTrend(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	m := p.Messages
	return marginTrend(s, func(y model.YearMetrics) model.Value { return y.OperatingMargin },
		p.MarginMinDelta, m.MarginExpanding, m.MarginContracting, m.MarginStable)
}

func netMarginTrend(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	m := p.Messages
	return marginTrend(s, func(y model.YearMetrics) model.Value { return y.NetMargin },
		p.NetMarginMinDelta, m.NetMarginExpanding, m.NetMarginContracting, "")
}

func latestLoss(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	y, _ := s.Latest()
	pat, ok := y.ProfitAfterTax.Get()
	if !ok || pat >= 0 || p.Messages.LatestLoss == "" {
		return "", "", false
	}
	return model.SeverityNegative, render(p.Messages.LatestLoss, vars{"year": strconv.Itoa(y.FiscalYear)}), true
}

func thinNetMargin(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	y, _ := s.Latest()
	nm, ok := y.NetMargin.Get()
	if !ok || nm < 0 || nm >= p.ThinNetMargin || p.Messages.ThinNetMargin == "" {
		return "", "", false
	}
	return model.SeverityCaution, render(p.Messages.ThinNetMargin, vars{
		"value": pct(nm),
		"year":  strconv.Itoa(y.FiscalYear),
	}), true
}

// epsDivergence flags EPS compounding at a different pace than net profit,
// which points at a changing share count.
func epsDivergence(s *model.DerivedMetricSeries, p *Policy) (model.Severity, string, bool) {
	e, ok := s.CAGR.EPS.Get()
	if !ok {
		return "", "", false
	}
	pat, ok := s.CAGR.ProfitAfterTax.Get()
	if !ok {
		return "", "", false
	}
	gap := e - pat
	v := vars{"rate": pct(e), "delta": pp(gap)}
	switch {
	case gap > p.EPSDivergence && p.Messages.EPSAheadOfProfit != "":
		return model.SeverityNeutral, render(p.Messages.EPSAheadOfProfit, v), true
	case gap < -p.EPSDivergence && p.Messages.EPSBehindProfit != "":
		return model.SeverityCaution, render(p.Messages.EPSBehindProfit, v), true
	}
	return "", "", false
}
