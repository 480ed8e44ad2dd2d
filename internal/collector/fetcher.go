package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"StockAnalyzer/internal/model"

	"golang.org/x/time/rate"
)

// ErrNoData is returned when a provider has no statements for a symbol.
var ErrNoData = errors.New("no financial data")

// Fetcher defines the interface for fetching annual financial statements.
// Records are returned oldest first, at most `years` of them.
type Fetcher interface {
	FetchFinancials(ctx context.Context, symbol string, years int) ([]model.YearlyFinancials, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// newLimiter returns nil (unlimited) when perSecond is not positive.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

// lastN keeps the newest n records of an ascending slice.
func lastN(recs []model.YearlyFinancials, n int) []model.YearlyFinancials {
	if n > 0 && len(recs) > n {
		return recs[len(recs)-n:]
	}
	return recs
}

// NewFetcher builds the provider named by provider ("yahoo" or "rest").
func NewFetcher(provider, baseURL, apiKey, proxyURL string, ratePerSec float64) (Fetcher, error) {
	switch provider {
	case "", "yahoo":
		f := NewYahooFetcher(proxyURL, ratePerSec)
		if baseURL != "" {
			f.BaseURL = baseURL
		}
		return f, nil
	case "rest":
		if baseURL == "" {
			return nil, fmt.Errorf("rest provider requires a base url")
		}
		return NewRESTFetcher(baseURL, apiKey, proxyURL, ratePerSec), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
