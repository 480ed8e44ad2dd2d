package calculator

import (
	"errors"
	"fmt"

	"StockAnalyzer/internal/model"
)

// ErrMalformedInput matches every *MalformedInputError via errors.Is.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError reports a structural problem with the input sequence.
type MalformedInputError struct {
	Index  int // position of the offending record, -1 for the sequence itself
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed input: %s", e.Reason)
	}
	return fmt.Sprintf("malformed input at record %d: %s", e.Index, e.Reason)
}

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// ValidateSeries checks the sequence is non-empty and strictly ascending by fiscal year.
func ValidateSeries(records []model.YearlyFinancials) error {
	if len(records) == 0 {
		return &MalformedInputError{Index: -1, Reason: "no records"}
	}
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1].FiscalYear, records[i].FiscalYear
		switch {
		case cur == prev:
			return &MalformedInputError{Index: i, Reason: fmt.Sprintf("duplicate fiscal year %d", cur)}
		case cur < prev:
			return &MalformedInputError{Index: i, Reason: fmt.Sprintf("fiscal year %d follows %d", cur, prev)}
		}
	}
	return nil
}

// ComputeMetrics derives margins, EPS, year-over-year growth and CAGR from
// an ascending sequence of yearly records. The result has one entry per input
// year; anything that cannot be computed is NA.
func ComputeMetrics(records []model.YearlyFinancials) (*model.DerivedMetricSeries, error) {
	if err := ValidateSeries(records); err != nil {
		return nil, err
	}

	years := make([]model.YearMetrics, len(records))
	for i, r := range records {
		eps, src := EarningsPerShare(r)
		y := model.YearMetrics{
			FiscalYear:      r.FiscalYear,
			Revenue:         r.Revenue,
			OperatingProfit: r.OperatingProfit,
			ProfitBeforeTax: r.ProfitBeforeTax,
			ProfitAfterTax:  r.ProfitAfterTax,
			EPS:             eps,
			EPSSource:       src,
			OperatingMargin: SafeRatio(r.OperatingProfit, r.Revenue),
			PretaxMargin:    SafeRatio(r.ProfitBeforeTax, r.Revenue),
			NetMargin:       SafeRatio(r.ProfitAfterTax, r.Revenue),
		}
		if i > 0 {
			prev := years[i-1]
			y.Growth = model.GrowthSet{
				Revenue:         Growth(y.Revenue, prev.Revenue),
				OperatingProfit: Growth(y.OperatingProfit, prev.OperatingProfit),
				ProfitAfterTax:  Growth(y.ProfitAfterTax, prev.ProfitAfterTax),
				EPS:             Growth(y.EPS, prev.EPS),
			}
		}
		years[i] = y
	}

	periods := len(years) - 1
	first, last := years[0], years[len(years)-1]
	return &model.DerivedMetricSeries{
		Years:   years,
		Periods: periods,
		CAGR: model.GrowthSet{
			Revenue:         CAGR(first.Revenue, last.Revenue, periods),
			OperatingProfit: CAGR(first.OperatingProfit, last.OperatingProfit, periods),
			ProfitAfterTax:  CAGR(first.ProfitAfterTax, last.ProfitAfterTax, periods),
			EPS:             CAGR(first.EPS, last.EPS, periods),
		},
	}, nil
}

// EarningsPerShare prefers the reported figure and otherwise derives
// PAT / shares outstanding. No dilution or preference-share adjustment is made.
func EarningsPerShare(r model.YearlyFinancials) (model.Value, model.EPSSource) {
	if r.EarningsPerShare.Available() {
		return r.EarningsPerShare, model.EPSReported
	}
	if eps := SafeRatio(r.ProfitAfterTax, r.SharesOutstanding); eps.Available() {
		return eps, model.EPSDerived
	}
	return model.NA, ""
}
