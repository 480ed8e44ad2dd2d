package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/insight"
	"StockAnalyzer/internal/model"
)

const yahooPayload = `{"timeseries":{"result":[
 {"meta":{"symbol":["TCS.NS"],"type":["annualTotalRevenue"]},"timestamp":[1648684800,1680220800],
  "annualTotalRevenue":[
   {"asOfDate":"2022-03-31","periodType":"12M","currencyCode":"INR","reportedValue":{"raw":1000,"fmt":"1k"}},
   {"asOfDate":"2023-03-31","periodType":"12M","currencyCode":"INR","reportedValue":{"raw":1200,"fmt":"1.2k"}}]},
 {"meta":{"symbol":["TCS.NS"],"type":["annualOperatingRevenue"]},
  "annualOperatingRevenue":[
   {"asOfDate":"2021-03-31","reportedValue":{"raw":900}},
   {"asOfDate":"2023-03-31","reportedValue":{"raw":1}}]},
 {"meta":{"symbol":["TCS.NS"],"type":["annualNetIncome"]},
  "annualNetIncome":[null,{"asOfDate":"2023-03-31","reportedValue":{"raw":150}}]},
 {"meta":{"symbol":["TCS.NS"],"type":["annualOrdinarySharesNumber"]},
  "annualOrdinarySharesNumber":[{"asOfDate":"2023-03-31","reportedValue":{"raw":10}}]},
 {"meta":{"symbol":["TCS.NS"],"type":["annualPretaxIncome"]}}
],"error":null}}`

func TestYahooFetcher_ParsesTimeseries(t *testing.T) {
	var gotPath, gotTypes string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTypes = r.URL.Query().Get("type")
		w.Write([]byte(yahooPayload))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", 0)
	f.BaseURL = srv.URL
	recs, err := f.FetchFinancials(context.Background(), "TCS.NS", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/timeseries/TCS.NS") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotTypes, "annualTotalRevenue") || !strings.Contains(gotTypes, "annualShareIssued") {
		t.Errorf("type parameter missing fields: %q", gotTypes)
	}
	if len(recs) != 2 || recs[0].FiscalYear != 2022 || recs[1].FiscalYear != 2023 {
		t.Fatalf("unexpected years: %+v", recs)
	}
	if v, _ := recs[1].Revenue.Get(); v != 1200 {
		t.Errorf("2023 revenue = %v, preferred type should win", v)
	}
	if recs[0].ProfitAfterTax.Available() {
		t.Error("2022 PAT should be NA")
	}
	if v, _ := recs[1].SharesOutstanding.Get(); v != 10 {
		t.Errorf("2023 shares = %v", v)
	}
}

func TestParseYahooTimeseries_Fallback(t *testing.T) {
	recs, err := parseYahooTimeseries([]byte(yahooPayload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 3 || recs[0].FiscalYear != 2021 {
		t.Fatalf("expected 2021-2023, got %+v", recs)
	}
	if v, _ := recs[0].Revenue.Get(); v != 900 {
		t.Errorf("2021 revenue should fall back to operating revenue, got %v", v)
	}
}

func TestParseYahooTimeseries_Errors(t *testing.T) {
	if _, err := parseYahooTimeseries([]byte(`{"timeseries":{"result":null,"error":{"code":"Not Found","description":"boom"}}}`)); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected api error, got %v", err)
	}
	if _, err := parseYahooTimeseries([]byte(`{"timeseries":{"result":[],"error":null}}`)); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := parseYahooTimeseries([]byte(`not json`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("symbol") == "MISSING.NS" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[
			{"fiscal_year":2024,"revenue":300,"profit_after_tax":30,"eps":3.5},
			{"fiscal_year":2022,"revenue":200,"profit_after_tax":null},
			{"fiscal_year":2023,"revenue":250,"shares_outstanding":10}
		]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "", 0)
	recs, err := f.FetchFinancials(context.Background(), "INFY.NS", 4)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(recs) != 3 || recs[0].FiscalYear != 2022 || recs[2].FiscalYear != 2024 {
		t.Fatalf("records not sorted ascending: %+v", recs)
	}
	if recs[0].ProfitAfterTax.Available() {
		t.Error("null PAT should be NA")
	}
	if v, _ := recs[2].EarningsPerShare.Get(); v != 3.5 {
		t.Errorf("eps = %v", v)
	}

	if _, err := f.FetchFinancials(context.Background(), "MISSING.NS", 4); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for 404, got %v", err)
	}

	f.APIKey = "wrong"
	if _, err := f.FetchFinancials(context.Background(), "INFY.NS", 4); err == nil {
		t.Error("expected error for unauthorized request")
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver(".NS", map[string]string{"reliance industries": "reliance"})
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"reliance", "RELIANCE.NS", true},
		{"  infy ", "INFY.NS", true},
		{"TCS.NS", "TCS.NS", true},
		{"m&m", "M&M.NS", true},
		{"Reliance Industries", "RELIANCE.NS", true},
		{"", "", false},
		{"bad symbol", "", false},
		{"DROP;TABLE", "", false},
		{strings.Repeat("A", 21), "", false},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.in)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("Resolve(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidSymbol) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidSymbol", tt.in, err)
		}
	}

	bare := NewResolver("", nil)
	if got, err := bare.Resolve("aapl"); err != nil || got != "AAPL" {
		t.Errorf("no-suffix resolve = %q, %v", got, err)
	}
}

type memStore struct {
	saved map[string][]model.YearlyFinancials
	loads int
}

func (s *memStore) Load(_ context.Context, source, symbol string, _ time.Duration) ([]model.YearlyFinancials, bool, error) {
	s.loads++
	recs, ok := s.saved[source+"/"+symbol]
	return recs, ok, nil
}

func (s *memStore) Save(_ context.Context, source, symbol string, recs []model.YearlyFinancials) error {
	s.saved[source+"/"+symbol] = recs
	return nil
}

func sampleRecords() []model.YearlyFinancials {
	return []model.YearlyFinancials{
		{FiscalYear: 2021, Revenue: model.Some(100), OperatingProfit: model.Some(15), ProfitAfterTax: model.Some(10), SharesOutstanding: model.Some(10)},
		{FiscalYear: 2022, Revenue: model.Some(110), OperatingProfit: model.Some(17), ProfitAfterTax: model.Some(12), SharesOutstanding: model.Some(10)},
		{FiscalYear: 2023, Revenue: model.Some(121), OperatingProfit: model.Some(20), ProfitAfterTax: model.Some(14.4), SharesOutstanding: model.Some(10)},
		{FiscalYear: 2024, Revenue: model.Some(133.1), OperatingProfit: model.Some(23), ProfitAfterTax: model.Some(17.3), SharesOutstanding: model.Some(10)},
	}
}

func TestCachedFetcher(t *testing.T) {
	mock := &MockFetcher{Data: map[string][]model.YearlyFinancials{"TCS.NS": sampleRecords()}}
	store := &memStore{saved: map[string][]model.YearlyFinancials{}}
	cf := NewCachedFetcher(mock, store, time.Hour)

	for i := 0; i < 3; i++ {
		recs, err := cf.FetchFinancials(context.Background(), "TCS.NS", 4)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(recs) != 4 {
			t.Fatalf("expected 4 records, got %d", len(recs))
		}
		recs[0].FiscalYear = 1999 // callers must not be able to corrupt the cache
	}
	if mock.Calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", mock.Calls)
	}
	if _, ok := store.saved["mock/TCS.NS"]; !ok {
		t.Error("expected records to be saved in the durable store")
	}

	// a fresh process with a warm store should not hit the provider
	mock2 := &MockFetcher{}
	cf2 := NewCachedFetcher(mock2, store, time.Hour)
	recs, err := cf2.FetchFinancials(context.Background(), "TCS.NS", 3)
	if err != nil {
		t.Fatalf("fetch from store: %v", err)
	}
	if mock2.Calls != 0 || len(recs) != 3 || recs[0].FiscalYear != 2022 {
		t.Errorf("store hit expected, calls=%d recs=%+v", mock2.Calls, recs)
	}
}

func TestCollector_Analyze(t *testing.T) {
	mock := &MockFetcher{Data: map[string][]model.YearlyFinancials{"TCS.NS": sampleRecords()}}
	col := NewCollector(mock, NewResolver(".NS", nil), insight.NewGenerator(insight.DefaultPolicy()), 4)

	a, err := col.Analyze(context.Background(), "tcs")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.Symbol != "TCS.NS" || a.Query != "tcs" || a.Source != "mock" {
		t.Errorf("unexpected envelope: %+v", a)
	}
	if a.ID == "" {
		t.Error("expected a request id")
	}
	if a.Metrics.Len() != 4 || len(a.Insights) == 0 {
		t.Errorf("expected 4 metric years and some insights, got %d / %d", a.Metrics.Len(), len(a.Insights))
	}
	if a.Insights[0].Category != model.CategoryRevenue {
		t.Errorf("first insight category = %s", a.Insights[0].Category)
	}

	if _, err := col.Analyze(context.Background(), "bad symbol"); !errors.Is(err, ErrInvalidSymbol) {
		t.Errorf("expected ErrInvalidSymbol, got %v", err)
	}
	if _, err := col.Analyze(context.Background(), "unknown"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}

	mock.Data["DUP.NS"] = []model.YearlyFinancials{{FiscalYear: 2023}, {FiscalYear: 2023}}
	if _, err := col.Analyze(context.Background(), "dup"); !errors.Is(err, calculator.ErrMalformedInput) {
		t.Errorf("expected malformed input error, got %v", err)
	}
}

func TestNewFetcher(t *testing.T) {
	f, err := NewFetcher("yahoo", "", "", "", 2)
	if err != nil || f.Name() != "yahoo" {
		t.Fatalf("yahoo: %v %v", f, err)
	}
	if yf := f.(*YahooFetcher); yf.BaseURL != yahooBaseURL || yf.limiter == nil {
		t.Errorf("unexpected yahoo fetcher: %+v", yf)
	}
	if f, err := NewFetcher("rest", "http://example.test", "k", "", 0); err != nil || f.Name() != "rest" {
		t.Errorf("rest: %v %v", f, err)
	}
	if _, err := NewFetcher("rest", "", "", "", 0); err == nil {
		t.Error("rest without base url should fail")
	}
	if _, err := NewFetcher("bloomberg", "", "", "", 0); err == nil {
		t.Error("unknown provider should fail")
	}
}
