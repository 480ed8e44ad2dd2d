package calculator

import (
	"math"

	"StockAnalyzer/internal/model"
)

// SafeRatio returns num/den, or NA when either side is missing or den is zero.
func SafeRatio(num, den model.Value) model.Value {
	n, ok := num.Get()
	if !ok {
		return model.NA
	}
	d, ok := den.Get()
	if !ok || d == 0 {
		return model.NA
	}
	return model.Some(n / d)
}

// Growth computes the simple period-over-period change (cur-prev)/|prev|.
func Growth(cur, prev model.Value) model.Value {
	c, ok := cur.Get()
	if !ok {
		return model.NA
	}
	p, ok := prev.Get()
	if !ok || p == 0 {
		return model.NA
	}
	return model.Some((c - p) / math.Abs(p))
}

// CAGR computes (last/first)^(1/periods) - 1.
// Both endpoints must be strictly positive and periods at least 1.
func CAGR(first, last model.Value, periods int) model.Value {
	if periods < 1 {
		return model.NA
	}
	f, ok := first.Get()
	if !ok || f <= 0 {
		return model.NA
	}
	l, ok := last.Get()
	if !ok || l <= 0 {
		return model.NA
	}
	return model.Some(math.Pow(l/f, 1.0/float64(periods)) - 1)
}
