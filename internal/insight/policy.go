package insight

import (
	"fmt"
	"math"
	"os"

	"StockAnalyzer/internal/model"

	"gopkg.in/yaml.v3"
)

// Band maps a growth rate range to an insight. Bands are checked in order and
// the first one with Min <= rate wins. An empty Text suppresses the insight.
type Band struct {
	Min      float64        `yaml:"min"`
	Severity model.Severity `yaml:"severity"`
	Text     string         `yaml:"text"`
}

// Messages holds the text templates of the non-band rules. An empty message
// disables its rule.
//
// Placeholders: {rate} {periods} {from} {to} {delta} {value} {year}.
type Messages struct {
	RevenueEveryYear     string `yaml:"revenue_every_year"`
	RevenueFellEveryYear string `yaml:"revenue_fell_every_year"`
	MarginExpanding      string `yaml:"margin_expanding"`
	MarginContracting    string `yaml:"margin_contracting"`
	MarginStable         string `yaml:"margin_stable"`
	NetMarginExpanding   string `yaml:"net_margin_expanding"`
	NetMarginContracting string `yaml:"net_margin_contracting"`
	LatestLoss           string `yaml:"latest_loss"`
	ThinNetMargin        string `yaml:"thin_net_margin"`
	EPSAheadOfProfit     string `yaml:"eps_ahead_of_profit"`
	EPSBehindProfit      string `yaml:"eps_behind_profit"`
}

// Policy is the threshold table driving insight generation.
type Policy struct {
	RevenueCAGR       []Band   `yaml:"revenue_cagr"`
	ProfitCAGR        []Band   `yaml:"profit_cagr"`
	EPSCAGR           []Band   `yaml:"eps_cagr"`
	MarginMinDelta    float64  `yaml:"margin_min_delta"`     // fraction, 0.01 = 1 percentage point
	NetMarginMinDelta float64  `yaml:"net_margin_min_delta"` // fraction
	ThinNetMargin     float64  `yaml:"thin_net_margin"`
	EPSDivergence     float64  `yaml:"eps_divergence"` // |EPS CAGR - PAT CAGR|
	MaxInsights       int      `yaml:"max_insights"`
	Messages          Messages `yaml:"messages"`
}

var floor = math.Inf(-1)

// DefaultPolicy returns the built-in thresholds.
//
//	revenue CAGR:  >=10% strong, >=3% moderate, >=-2% flat, below that declining
//	PAT/EPS CAGR:  >=15% strong, >=3% moderate, >=-2% flat, below that declining
//	margin trend:  1 pp change between oldest and newest available year
//	thin margin:   net margin under 5%
//	EPS vs PAT:    5 pp CAGR gap
func DefaultPolicy() Policy {
	return Policy{
		RevenueCAGR: []Band{
			{Min: 0.10, Severity: model.SeverityPositive, Text: "Revenue is growing strongly at {rate} a year over {periods} years ({from}-{to})."},
			{Min: 0.03, Severity: model.SeverityNeutral, Text: "Revenue is growing moderately at {rate} a year over {periods} years."},
			{Min: -0.02, Severity: model.SeverityNeutral, Text: "Revenue is broadly flat ({rate} a year over {periods} years)."},
			{Min: floor, Severity: model.SeverityCaution, Text: "Revenue is declining at {rate} a year over {periods} years."},
		},
		ProfitCAGR: []Band{
			{Min: 0.15, Severity: model.SeverityPositive, Text: "Net profit is compounding at {rate} a year ({from}-{to})."},
			{Min: 0.03, Severity: model.SeverityNeutral, Text: "Net profit is growing at {rate} a year."},
			{Min: -0.02, Severity: model.SeverityNeutral, Text: "Net profit is roughly flat ({rate} a year)."},
			{Min: floor, Severity: model.SeverityCaution, Text: "Net profit is shrinking at {rate} a year."},
		},
		EPSCAGR: []Band{
			{Min: 0.15, Severity: model.SeverityPositive, Text: "EPS is growing strongly at {rate} a year."},
			{Min: 0.03, Severity: model.SeverityNeutral, Text: "EPS is growing at {rate} a year."},
			{Min: -0.02, Severity: model.SeverityNeutral, Text: "EPS is roughly flat ({rate} a year)."},
			{Min: floor, Severity: model.SeverityCaution, Text: "EPS is declining at {rate} a year."},
		},
		MarginMinDelta:    0.01,
		NetMarginMinDelta: 0.01,
		ThinNetMargin:     0.05,
		EPSDivergence:     0.05,
		MaxInsights:       8,
		Messages: Messages{
			RevenueEveryYear:     "Revenue grew in every one of the last {periods} years.",
			RevenueFellEveryYear: "Revenue fell in every one of the last {periods} years.",
			MarginExpanding:      "Operating margin expanded by {delta} from {from} to {to} (now {value}).",
			MarginContracting:    "Operating margin contracted by {delta} from {from} to {to} (now {value}).",
			MarginStable:         "Operating margin is stable around {value}.",
			NetMarginExpanding:   "Net margin improved by {delta} from {from} to {to}.",
			NetMarginContracting: "Net margin narrowed by {delta} from {from} to {to}.",
			LatestLoss:           "The company reported a net loss in {year}.",
			ThinNetMargin:        "Net margin is thin at {value} in {year}.",
			EPSAheadOfProfit:     "EPS growth ({rate}) is running ahead of profit growth; the share count is likely shrinking (buybacks).",
			EPSBehindProfit:      "EPS growth ({rate}) lags profit growth; new shares may be diluting earnings.",
		},
	}
}

// LoadPolicy reads a YAML policy file on top of DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks band ordering, severities and threshold signs.
func (p *Policy) Validate() error {
	for name, bands := range map[string][]Band{
		"revenue_cagr": p.RevenueCAGR,
		"profit_cagr":  p.ProfitCAGR,
		"eps_cagr":     p.EPSCAGR,
	} {
		for i, b := range bands {
			if !validSeverity(b.Severity) {
				return fmt.Errorf("insights.%s[%d]: unknown severity %q", name, i, b.Severity)
			}
			if i > 0 && b.Min >= bands[i-1].Min {
				return fmt.Errorf("insights.%s[%d]: bands must be ordered by descending min", name, i)
			}
		}
	}
	if p.MarginMinDelta < 0 || p.NetMarginMinDelta < 0 || p.EPSDivergence < 0 {
		return fmt.Errorf("insights: deltas must not be negative")
	}
	if p.MaxInsights <= 0 {
		return fmt.Errorf("insights.max_insights must be positive")
	}
	return nil
}

func validSeverity(s model.Severity) bool {
	switch s {
	case model.SeverityPositive, model.SeverityNeutral, model.SeverityCaution, model.SeverityNegative:
		return true
	}
	return false
}

// match returns the first band whose Min is at or below rate.
func match(bands []Band, rate float64) (Band, bool) {
	for _, b := range bands {
		if rate >= b.Min {
			return b, true
		}
	}
	return Band{}, false
}
