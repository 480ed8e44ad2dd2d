package calculator

import (
	"testing"

	"StockAnalyzer/internal/model"
)

func TestCAGR_DefinedOnlyForPositiveEndpoints(t *testing.T) {
	tests := []struct {
		first, last model.Value
		periods     int
		defined     bool
	}{
		{model.Some(100), model.Some(200), 1, true},
		{model.Some(100), model.Some(50), 2, true},
		{model.Some(0), model.Some(50), 2, false},
		{model.Some(-10), model.Some(50), 2, false},
		{model.Some(10), model.Some(-50), 2, false},
		{model.Some(10), model.Some(0), 2, false},
		{model.NA, model.Some(50), 2, false},
		{model.Some(10), model.NA, 2, false},
		{model.Some(10), model.Some(20), 0, false},
	}
	for _, tt := range tests {
		got := CAGR(tt.first, tt.last, tt.periods)
		if got.Available() != tt.defined {
			t.Errorf("CAGR(%s, %s, %d) available=%v, want %v", tt.first, tt.last, tt.periods, got.Available(), tt.defined)
		}
	}
	approx(t, "doubling", CAGR(model.Some(100), model.Some(200), 1), 1.0)
}

func TestGrowth_UsesAbsoluteBase(t *testing.T) {
	// a loss narrowing from -100 to -50 is an improvement
	approx(t, "narrowing loss", Growth(model.Some(-50), model.Some(-100)), 0.5)
	approx(t, "swing to profit", Growth(model.Some(100), model.Some(-100)), 2.0)
	wantNA(t, "zero base", Growth(model.Some(10), model.Some(0)))
	wantNA(t, "missing current", Growth(model.NA, model.Some(10)))
}

func TestSafeRatio(t *testing.T) {
	approx(t, "ratio", SafeRatio(model.Some(25), model.Some(100)), 0.25)
	wantNA(t, "zero den", SafeRatio(model.Some(25), model.Some(0)))
	wantNA(t, "missing den", SafeRatio(model.Some(25), model.NA))
	wantNA(t, "missing num", SafeRatio(model.NA, model.Some(4)))
}
