package report

import "StockAnalyzer/internal/model"

// Record is one cell of the metric table, convenient for charts and CSV.
type Record struct {
	FiscalYear int         `json:"fiscal_year"`
	Field      string      `json:"field"`
	Value      model.Value `json:"value"`
}

type kind int

const (
	kindAmount kind = iota
	kindPerShare
	kindPercent
)

type column struct {
	field string
	label string
	kind  kind
	pick  func(model.YearMetrics) model.Value
}

// columns is the display order of the metric table.
var columns = []column{
	{"revenue", "Revenue", kindAmount, func(y model.YearMetrics) model.Value { return y.Revenue }},
	{"operating_profit", "Operating Profit", kindAmount, func(y model.YearMetrics) model.Value { return y.OperatingProfit }},
	{"profit_before_tax", "Profit Before Tax", kindAmount, func(y model.YearMetrics) model.Value { return y.ProfitBeforeTax }},
	{"profit_after_tax", "PAT", kindAmount, func(y model.YearMetrics) model.Value { return y.ProfitAfterTax }},
	{"eps", "EPS", kindPerShare, func(y model.YearMetrics) model.Value { return y.EPS }},
	{"operating_margin", "OPM", kindPercent, func(y model.YearMetrics) model.Value { return y.OperatingMargin }},
	{"pretax_margin", "Pretax Margin", kindPercent, func(y model.YearMetrics) model.Value { return y.PretaxMargin }},
	{"net_margin", "Net Margin", kindPercent, func(y model.YearMetrics) model.Value { return y.NetMargin }},
	{"revenue_growth", "Revenue YoY", kindPercent, func(y model.YearMetrics) model.Value { return y.Growth.Revenue }},
	{"operating_profit_growth", "Operating Profit YoY", kindPercent, func(y model.YearMetrics) model.Value { return y.Growth.OperatingProfit }},
	{"profit_after_tax_growth", "PAT YoY", kindPercent, func(y model.YearMetrics) model.Value { return y.Growth.ProfitAfterTax }},
	{"eps_growth", "EPS YoY", kindPercent, func(y model.YearMetrics) model.Value { return y.Growth.EPS }},
}

func (c column) format(v model.Value) string {
	switch c.kind {
	case kindPercent:
		return FormatPercent(v)
	case kindPerShare:
		return FormatPerShare(v)
	default:
		return FormatAmount(v)
	}
}

// Records flattens series into year-major rows in display column order.
// NA cells are kept so every year has the same fields.
func Records(series *model.DerivedMetricSeries) []Record {
	if series == nil {
		return nil
	}
	out := make([]Record, 0, len(series.Years)*len(columns))
	for _, y := range series.Years {
		for _, c := range columns {
			out = append(out, Record{FiscalYear: y.FiscalYear, Field: c.field, Value: c.pick(y)})
		}
	}
	return out
}
