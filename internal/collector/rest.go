package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"StockAnalyzer/internal/model"

	"golang.org/x/time/rate"
)

// RESTFetcher implements Fetcher against a generic JSON financials API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, ratePerSec float64) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		limiter: newLimiter(ratePerSec),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restYear is the expected JSON shape of one fiscal year. Missing figures are null.
type restYear struct {
	FiscalYear        int      `json:"fiscal_year"`
	Revenue           *float64 `json:"revenue"`
	OperatingProfit   *float64 `json:"operating_profit"`
	ProfitBeforeTax   *float64 `json:"profit_before_tax"`
	ProfitAfterTax    *float64 `json:"profit_after_tax"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
	EPS               *float64 `json:"eps"`
}

func (f *RESTFetcher) FetchFinancials(ctx context.Context, symbol string, years int) ([]model.YearlyFinancials, error) {
	if err := wait(ctx, f.limiter); err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/v1/financials/annual?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), years)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch financials: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch financials: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rows []restYear
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode financials: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	recs := make([]model.YearlyFinancials, len(rows))
	for i, r := range rows {
		recs[i] = model.YearlyFinancials{
			FiscalYear:        r.FiscalYear,
			Revenue:           model.FromPtr(r.Revenue),
			OperatingProfit:   model.FromPtr(r.OperatingProfit),
			ProfitBeforeTax:   model.FromPtr(r.ProfitBeforeTax),
			ProfitAfterTax:    model.FromPtr(r.ProfitAfterTax),
			SharesOutstanding: model.FromPtr(r.SharesOutstanding),
			EarningsPerShare:  model.FromPtr(r.EPS),
		}
	}
	// Ensure chronological order; duplicates are left for the metrics engine to reject.
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].FiscalYear < recs[j].FiscalYear })
	return lastN(recs, years), nil
}
