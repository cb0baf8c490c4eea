package ticker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/redis"
)

type fakeSearcher struct {
	result *contracts.TickerResult
	err    error
	calls  int
}

func (f *fakeSearcher) SearchTicker(ctx context.Context, company string) (*contracts.TickerResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	r.Query = company
	return &r, nil
}

// memoryCache stores JSON like redis.Cache does
type memoryCache struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if m.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

var msft = &contracts.TickerResult{
	Found:       true,
	Ticker:      "MSFT",
	Name:        "Microsoft Corporation",
	Suggestions: []contracts.TickerMatch{{Symbol: "MSFT", Name: "Microsoft Corporation"}},
	Message:     "Found ticker 'MSFT' for 'Microsoft Corporation'",
}

func TestResolver_CachesFoundResults(t *testing.T) {
	searcher := &fakeSearcher{result: msft}
	cache := newMemoryCache()
	resolver := NewResolver(searcher, cache, nil)

	first, err := resolver.SearchTicker(context.Background(), "Microsoft")
	require.NoError(t, err)
	second, err := resolver.SearchTicker(context.Background(), " microsoft ")
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, first.Ticker, second.Ticker)
	assert.Equal(t, "microsoft", second.Query)
	assert.Equal(t, redis.TTLDaily, cache.ttls[redis.TickerSearchKey("Microsoft")])
}

func TestResolver_DoesNotCacheMisses(t *testing.T) {
	searcher := &fakeSearcher{result: &contracts.TickerResult{Found: false, Suggestions: []contracts.TickerMatch{}}}
	resolver := NewResolver(searcher, newMemoryCache(), nil)

	for i := 0; i < 2; i++ {
		result, err := resolver.SearchTicker(context.Background(), "Nope Corp")
		require.NoError(t, err)
		assert.False(t, result.Found)
	}
	assert.Equal(t, 2, searcher.calls)
}

func TestResolver_CacheFailureFallsThrough(t *testing.T) {
	searcher := &fakeSearcher{result: msft}
	cache := newMemoryCache()
	cache.failGet = true

	result, err := NewResolver(searcher, cache, nil).SearchTicker(context.Background(), "Microsoft")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", result.Ticker)
}

func TestResolver_WithoutCache(t *testing.T) {
	searcher := &fakeSearcher{err: contracts.ErrProviderError}

	_, err := NewResolver(searcher, nil, nil).SearchTicker(context.Background(), "Microsoft")
	assert.True(t, errors.Is(err, contracts.ErrProviderError))
}

func TestResolver_DisabledRedisCache(t *testing.T) {
	searcher := &fakeSearcher{result: msft}
	resolver := NewResolver(searcher, redis.NewCache(redis.Disabled(), "clientintel"), nil)

	for i := 0; i < 2; i++ {
		_, err := resolver.SearchTicker(context.Background(), "Microsoft")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, searcher.calls)
}
