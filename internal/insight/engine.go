package insight

import (
	"sort"

	"StockAnalyzer/internal/model"
)

// Generator evaluates the rule set against a metric series.
type Generator struct {
	Policy Policy
}

// NewGenerator creates a Generator with the given policy.
func NewGenerator(p Policy) *Generator {
	return &Generator{Policy: p}
}

// Generate runs the default policy over series.
func Generate(series *model.DerivedMetricSeries) []model.Insight {
	return NewGenerator(DefaultPolicy()).Generate(series)
}

// Generate returns insights grouped by category in model.CategoryOrder,
// capped at Policy.MaxInsights. Rules whose inputs are NA are skipped.
func (g *Generator) Generate(series *model.DerivedMetricSeries) []model.Insight {
	if series == nil || series.Len() == 0 {
		return nil
	}

	out := make([]model.Insight, 0, len(rules))
	for _, r := range rules {
		sev, text, ok := r.eval(series, &g.Policy)
		if !ok {
			continue
		}
		out = append(out, model.Insight{
			Category: r.category,
			Severity: sev,
			Rule:     r.name,
			Text:     text,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return categoryRank(out[i].Category) < categoryRank(out[j].Category)
	})

	if limit := g.Policy.MaxInsights; limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func categoryRank(c model.Category) int {
	for i, oc := range model.CategoryOrder {
		if oc == c {
			return i
		}
	}
	return len(model.CategoryOrder)
}
