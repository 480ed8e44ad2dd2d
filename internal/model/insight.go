package model

import "time"

// Category groups insights; the generator emits them in CategoryOrder.
type Category string

const (
	CategoryRevenue       Category = "revenue"
	CategoryMargin        Category = "margin"
	CategoryProfitability Category = "profitability"
	CategoryEPS           Category = "eps"
)

// CategoryOrder is the fixed presentation order.
var CategoryOrder = []Category{CategoryRevenue, CategoryMargin, CategoryProfitability, CategoryEPS}

// Severity tags the tone of an insight.
type Severity string

const (
	SeverityPositive Severity = "positive"
	SeverityNeutral  Severity = "neutral"
	SeverityCaution  Severity = "caution"
	SeverityNegative Severity = "negative"
)

// Insight is a short rule-generated observation.
type Insight struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Text     string   `json:"text"`
}

// Analysis is the result of one analysis request.
type Analysis struct {
	ID          string               `json:"id"`
	Query       string               `json:"query"`
	Symbol      string               `json:"symbol"`
	Source      string               `json:"source"`
	Financials  []YearlyFinancials   `json:"financials"`
	Metrics     *DerivedMetricSeries `json:"metrics"`
	Insights    []Insight            `json:"insights"`
	GeneratedAt time.Time            `json:"generated_at"`
}
