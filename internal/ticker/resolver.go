// Package ticker resolves company names to tickers, caching searches in Redis when enabled.
package ticker

import (
	"context"
	"strings"
	"time"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/logger"
	"github.com/wonny/clientintel/pkg/redis"
)

// Cache is the subset of redis.Cache used here
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Resolver wraps a TickerSearcher with an optional cache.
// Only found results are cached so a new listing shows up on the next search.
type Resolver struct {
	searcher contracts.TickerSearcher
	cache    Cache
	ttl      time.Duration
	logger   *logger.Logger
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(searcher contracts.TickerSearcher, cache Cache, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		searcher: searcher,
		cache:    cache,
		ttl:      redis.TTLDaily,
		logger:   log.WithComponent("ticker"),
	}
}

// SearchTicker implements contracts.TickerSearcher
func (r *Resolver) SearchTicker(ctx context.Context, company string) (*contracts.TickerResult, error) {
	company = strings.TrimSpace(company)
	key := redis.TickerSearchKey(company)

	if r.cache != nil {
		var cached contracts.TickerResult
		found, err := r.cache.Get(ctx, key, &cached)
		if err != nil {
			r.logger.WithError(err).Warn("Ticker cache read failed")
		}
		if found {
			cached.Query = company
			return &cached, nil
		}
	}

	result, err := r.searcher.SearchTicker(ctx, company)
	if err != nil {
		return nil, err
	}

	if r.cache != nil && result.Found {
		if err := r.cache.Set(ctx, key, result, r.ttl); err != nil {
			r.logger.WithError(err).Warn("Ticker cache write failed")
		}
	}

	return result, nil
}
