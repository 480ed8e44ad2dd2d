package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/insight"
	"StockAnalyzer/internal/model"

	"github.com/google/uuid"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Data  map[string][]model.YearlyFinancials
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchFinancials(_ context.Context, symbol string, years int) ([]model.YearlyFinancials, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	recs, ok := m.Data[symbol]
	if !ok || len(recs) == 0 {
		return nil, ErrNoData
	}
	return copyRecords(lastN(recs, years)), nil
}

// Collector orchestrates symbol resolution, data fetching, metrics and insights.
type Collector struct {
	Fetcher   Fetcher
	Resolver  *Resolver
	Generator *insight.Generator
	Years     int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, resolver *Resolver, gen *insight.Generator, years int) *Collector {
	if years <= 0 {
		years = 4
	}
	return &Collector{Fetcher: fetcher, Resolver: resolver, Generator: gen, Years: years}
}

// Analyze resolves query, fetches its statements and runs the analysis.
func (c *Collector) Analyze(ctx context.Context, query string) (*model.Analysis, error) {
	symbol, err := c.Resolver.Resolve(query)
	if err != nil {
		return nil, err
	}
	recs, err := c.Fetcher.FetchFinancials(ctx, symbol, c.Years)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	a, err := c.AnalyzeRecords(symbol, recs)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	a.Query = query
	a.Source = c.Fetcher.Name()
	log.Printf("[INFO] analysis %s: %s, %d years, %d insights", a.ID, symbol, len(recs), len(a.Insights))
	return a, nil
}

// AnalyzeRecords runs the metrics engine and insight rules over records
// already in hand.
func (c *Collector) AnalyzeRecords(symbol string, recs []model.YearlyFinancials) (*model.Analysis, error) {
	series, err := calculator.ComputeMetrics(recs)
	if err != nil {
		return nil, err
	}
	return &model.Analysis{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		Financials:  recs,
		Metrics:     series,
		Insights:    c.Generator.Generate(series),
		GeneratedAt: time.Now(),
	}, nil
}
