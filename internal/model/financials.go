package model

// YearlyFinancials holds one fiscal year's reported figures.
// All monetary amounts share one currency unit; any field may be NA.
type YearlyFinancials struct {
	FiscalYear        int   `json:"fiscal_year"`
	Revenue           Value `json:"revenue"`
	OperatingProfit   Value `json:"operating_profit"`
	ProfitBeforeTax   Value `json:"profit_before_tax"`
	ProfitAfterTax    Value `json:"profit_after_tax"`
	SharesOutstanding Value `json:"shares_outstanding"`
	EarningsPerShare  Value `json:"earnings_per_share"`
}
