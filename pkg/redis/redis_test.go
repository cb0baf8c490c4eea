package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientintel/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: "1"},
	}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")
	limit := AlphaVantageRateLimit(5)

	allowed, remaining, err := limiter.Allow(context.Background(), limit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 5, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), limit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", TTLDaily))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestTickerSearchKey(t *testing.T) {
	assert.Equal(t, "ticker:search:microsoft", TickerSearchKey("Microsoft"))
	assert.Equal(t, TickerSearchKey("  Omnicom Group "), TickerSearchKey("omnicom group"))
}

func TestAlphaVantageRateLimit(t *testing.T) {
	cfg := AlphaVantageRateLimit(75)
	assert.Equal(t, "alphavantage", cfg.Key)
	assert.Equal(t, 75, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
}
