package report

import (
	"strconv"
	"strings"

	"StockAnalyzer/internal/model"

	"github.com/dustin/go-humanize"
)

// Currency prefixes every monetary amount.
const Currency = "₹"

// NotAvailable is rendered in place of NA values.
const NotAvailable = "N/A"

// FormatNumber renders x with comma grouping and a fixed number of decimals.
func FormatNumber(x float64, decimals int) string {
	s := strconv.FormatFloat(x, 'f', decimals, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		s = s[1:]
		if f, _ := strconv.ParseFloat(s, 64); f != 0 {
			sign = "-"
		}
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return sign + s
	}
	out := humanize.Comma(n)
	if frac != "" {
		out += "." + frac
	}
	return sign + out
}

// FormatAmount scales a rupee amount to crore, lakh or thousand.
func FormatAmount(v model.Value) string {
	x, ok := v.Get()
	if !ok {
		return NotAvailable
	}
	abs := x
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e7:
		return Currency + FormatNumber(x/1e7, 2) + " Cr"
	case abs >= 1e5:
		return Currency + FormatNumber(x/1e5, 2) + " L"
	case abs >= 1000:
		return Currency + FormatNumber(x/1000, 2) + " K"
	}
	return Currency + FormatNumber(x, 2)
}

// FormatPerShare renders a per-share figure without scaling.
func FormatPerShare(v model.Value) string {
	x, ok := v.Get()
	if !ok {
		return NotAvailable
	}
	return Currency + FormatNumber(x, 2)
}

// FormatPercent renders a ratio such as 0.153 as "15.30%".
func FormatPercent(v model.Value) string {
	x, ok := v.Get()
	if !ok {
		return NotAvailable
	}
	return FormatNumber(x*100, 2) + "%"
}

// FormatValue renders a plain number, or N/A.
func FormatValue(v model.Value) string {
	x, ok := v.Get()
	if !ok {
		return NotAvailable
	}
	return FormatNumber(x, 2)
}
