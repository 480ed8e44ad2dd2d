package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"StockAnalyzer/internal/model"

	"golang.org/x/time/rate"
)

const yahooBaseURL = "https://query2.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance fundamentals timeseries API.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string
	limiter *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. ratePerSec <= 0 disables throttling.
func NewYahooFetcher(proxyURL string, ratePerSec float64) *YahooFetcher {
	return &YahooFetcher{
		Client:  newHTTPClient(proxyURL),
		BaseURL: yahooBaseURL,
		limiter: newLimiter(ratePerSec),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooField lists timeseries types in preference order for one line item.
type yahooField struct {
	types []string
	set   func(r *model.YearlyFinancials, v model.Value)
}

var yahooFields = []yahooField{
	{[]string{"annualTotalRevenue", "annualOperatingRevenue"}, func(r *model.YearlyFinancials, v model.Value) { r.Revenue = v }},
	{[]string{"annualOperatingIncome", "annualTotalOperatingIncomeAsReported"}, func(r *model.YearlyFinancials, v model.Value) { r.OperatingProfit = v }},
	{[]string{"annualPretaxIncome"}, func(r *model.YearlyFinancials, v model.Value) { r.ProfitBeforeTax = v }},
	{[]string{"annualNetIncome", "annualNetIncomeCommonStockholders"}, func(r *model.YearlyFinancials, v model.Value) { r.ProfitAfterTax = v }},
	{[]string{"annualOrdinarySharesNumber", "annualShareIssued"}, func(r *model.YearlyFinancials, v model.Value) { r.SharesOutstanding = v }},
}

// yahooTimeseries is the response structure from the timeseries endpoint.
// Each result carries its type name in meta and the points under that key.
type yahooTimeseries struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

type yahooPoint struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue *struct {
		Raw *float64 `json:"raw"`
	} `json:"reportedValue"`
}

func yahooTypes() []string {
	var types []string
	for _, fld := range yahooFields {
		types = append(types, fld.types...)
	}
	return types
}

func (f *YahooFetcher) FetchFinancials(ctx context.Context, symbol string, years int) ([]model.YearlyFinancials, error) {
	if err := wait(ctx, f.limiter); err != nil {
		return nil, err
	}

	now := time.Now()
	// fiscal years can end well before the calendar year; look back a little further
	start := now.AddDate(-(years + 2), 0, 0)
	u := fmt.Sprintf("%s/ws/fundamentals-timeseries/v1/finance/timeseries/%s?symbol=%s&type=%s&period1=%d&period2=%d",
		f.BaseURL, url.PathEscape(symbol), url.QueryEscape(symbol),
		url.QueryEscape(strings.Join(yahooTypes(), ",")), start.Unix(), now.Unix())

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	recs, err := parseYahooTimeseries(body)
	if err != nil {
		return nil, err
	}
	return lastN(recs, years), nil
}

// parseYahooTimeseries folds the per-type series into ascending yearly records.
func parseYahooTimeseries(body []byte) ([]model.YearlyFinancials, error) {
	var ts yahooTimeseries
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if ts.Timeseries.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", ts.Timeseries.Error.Description)
	}

	// type -> fiscal year -> value
	byType := make(map[string]map[int]float64)
	yearSet := make(map[int]bool)
	for _, res := range ts.Timeseries.Result {
		var meta struct {
			Type []string `json:"type"`
		}
		if raw, ok := res["meta"]; !ok || json.Unmarshal(raw, &meta) != nil || len(meta.Type) == 0 {
			continue
		}
		typ := meta.Type[0]
		raw, ok := res[typ]
		if !ok {
			continue
		}
		var points []*yahooPoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("yahoo decode %s: %w", typ, err)
		}
		for _, p := range points {
			if p == nil || p.ReportedValue == nil || p.ReportedValue.Raw == nil {
				continue
			}
			d, err := time.Parse("2006-01-02", p.AsOfDate)
			if err != nil {
				continue
			}
			if byType[typ] == nil {
				byType[typ] = make(map[int]float64)
			}
			byType[typ][d.Year()] = *p.ReportedValue.Raw
			yearSet[d.Year()] = true
		}
	}
	if len(yearSet) == 0 {
		return nil, ErrNoData
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	recs := make([]model.YearlyFinancials, len(years))
	for i, y := range years {
		recs[i].FiscalYear = y
		for _, fld := range yahooFields {
			for _, typ := range fld.types {
				if v, ok := byType[typ][y]; ok {
					fld.set(&recs[i], model.Some(v))
					break
				}
			}
		}
	}
	return recs, nil
}
