package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockAnalyzer/internal/model"

	"github.com/patrickmn/go-cache"
)

// Store is the durable layer behind CachedFetcher.
type Store interface {
	Load(ctx context.Context, source, symbol string, maxAge time.Duration) ([]model.YearlyFinancials, bool, error)
	Save(ctx context.Context, source, symbol string, recs []model.YearlyFinancials) error
}

// CachedFetcher wraps a Fetcher with an in-memory TTL cache and an optional durable store.
type CachedFetcher struct {
	Fetcher Fetcher
	Store   Store
	TTL     time.Duration
	mem     *cache.Cache
}

// NewCachedFetcher creates a CachedFetcher. store may be nil.
func NewCachedFetcher(f Fetcher, store Store, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		Fetcher: f,
		Store:   store,
		TTL:     ttl,
		mem:     cache.New(ttl, 2*ttl),
	}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() }

func (c *CachedFetcher) FetchFinancials(ctx context.Context, symbol string, years int) ([]model.YearlyFinancials, error) {
	key := fmt.Sprintf("%s:%s:%d", c.Fetcher.Name(), symbol, years)
	if v, ok := c.mem.Get(key); ok {
		return copyRecords(v.([]model.YearlyFinancials)), nil
	}

	if c.Store != nil {
		recs, ok, err := c.Store.Load(ctx, c.Fetcher.Name(), symbol, c.TTL)
		if err != nil {
			log.Printf("[WARN] cache store load %s: %v", symbol, err)
		} else if ok && len(recs) >= years {
			recs = lastN(recs, years)
			c.mem.SetDefault(key, recs)
			return copyRecords(recs), nil
		}
	}

	recs, err := c.Fetcher.FetchFinancials(ctx, symbol, years)
	if err != nil {
		return nil, err
	}
	c.mem.SetDefault(key, recs)
	if c.Store != nil {
		if err := c.Store.Save(ctx, c.Fetcher.Name(), symbol, recs); err != nil {
			log.Printf("[WARN] cache store save %s: %v", symbol, err)
		}
	}
	return copyRecords(recs), nil
}

func copyRecords(recs []model.YearlyFinancials) []model.YearlyFinancials {
	out := make([]model.YearlyFinancials, len(recs))
	copy(out, recs)
	return out
}
