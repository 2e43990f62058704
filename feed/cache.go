package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/patrickmn/go-cache"
)

// DefaultTTL is the lifetime of a cached quote.
const DefaultTTL = 24 * time.Hour

// Cached is a PriceFeed that remembers the answers of another feed, including
// the missing prices. Other errors are not cached.
type Cached struct {
	feed  folio.PriceFeed
	cache *cache.Cache
}

// NewCached wraps a feed with a cache. A zero ttl means DefaultTTL.
func NewCached(feed folio.PriceFeed, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{feed: feed, cache: cache.New(ttl, 2*ttl)}
}

// cachedQuote is a cached answer, the price or the missing price error.
type cachedQuote struct {
	price folio.Money
	err   error
}

// Price implements folio.PriceFeed.
func (c *Cached) Price(ctx context.Context, symbol string, on date.Date) (folio.Money, error) {
	key := symbol + "@" + on.String()
	if v, found := c.cache.Get(key); found {
		q := v.(cachedQuote)
		return q.price, q.err
	}
	price, err := c.feed.Price(ctx, symbol, on)
	if err != nil && !errors.Is(err, folio.ErrNoPriceAvailable) {
		return price, err
	}
	slog.DebugContext(ctx, "caching quote", "symbol", symbol, "date", on.String(), "missing", err != nil)
	c.cache.Set(key, cachedQuote{price: price, err: err}, cache.DefaultExpiration)
	return price, err
}

// Flush drops every cached quote.
func (c *Cached) Flush() { c.cache.Flush() }
