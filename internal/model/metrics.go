package model

// EPSSource tells where a year's EPS came from.
type EPSSource string

const (
	EPSReported EPSSource = "reported"
	EPSDerived  EPSSource = "derived"
)

// GrowthSet holds one growth figure per tracked metric.
type GrowthSet struct {
	Revenue         Value `json:"revenue"`
	OperatingProfit Value `json:"operating_profit"`
	ProfitAfterTax  Value `json:"profit_after_tax"`
	EPS             Value `json:"eps"`
}

// YearMetrics is the derived view of a single input year.
type YearMetrics struct {
	FiscalYear      int       `json:"fiscal_year"`
	Revenue         Value     `json:"revenue"`
	OperatingProfit Value     `json:"operating_profit"`
	ProfitBeforeTax Value     `json:"profit_before_tax"`
	ProfitAfterTax  Value     `json:"profit_after_tax"`
	EPS             Value     `json:"eps"`
	EPSSource       EPSSource `json:"eps_source,omitempty"`
	OperatingMargin Value     `json:"operating_margin"`
	PretaxMargin    Value     `json:"pretax_margin"`
	NetMargin       Value     `json:"net_margin"`
	Growth          GrowthSet `json:"yoy_growth"`
}

// DerivedMetricSeries is aligned 1:1 with the input years, oldest first.
type DerivedMetricSeries struct {
	Years   []YearMetrics `json:"years"`
	CAGR    GrowthSet     `json:"cagr"`
	Periods int           `json:"periods"` // compounding periods between first and last year
}

// Len returns the number of years in the series.
func (s *DerivedMetricSeries) Len() int { return len(s.Years) }

// Latest returns the newest year, or false for an empty series.
func (s *DerivedMetricSeries) Latest() (YearMetrics, bool) {
	if len(s.Years) == 0 {
		return YearMetrics{}, false
	}
	return s.Years[len(s.Years)-1], true
}

// FirstLastAvailable finds the oldest and newest years where pick yields a
// number. ok is false unless two distinct years qualify.
func (s *DerivedMetricSeries) FirstLastAvailable(pick func(YearMetrics) Value) (first, last YearMetrics, ok bool) {
	fi, li := -1, -1
	for i, y := range s.Years {
		if !pick(y).Available() {
			continue
		}
		if fi < 0 {
			fi = i
		}
		li = i
	}
	if fi < 0 || fi == li {
		return YearMetrics{}, YearMetrics{}, false
	}
	return s.Years[fi], s.Years[li], true
}
