package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/wonny/clientintel/pkg/config"
	"github.com/wonny/clientintel/pkg/logger"
)

func testClient(timeout time.Duration) *Client {
	return New(&config.Config{ProviderTimeout: timeout}, logger.Nop())
}

func TestNew(t *testing.T) {
	client := testClient(3 * time.Second)
	require.NotNil(t, client)
	assert.Equal(t, 3*time.Second, client.Timeout())

	fallback := New(&config.Config{}, nil)
	assert.Equal(t, 10*time.Second, fallback.Timeout())
	assert.NotNil(t, fallback.logger)
}

func TestGetBody_UserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "ClientIntel/Test", r.Header.Get("User-Agent"))
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	body, err := testClient(time.Second).WithUserAgent("ClientIntel/Test").GetBody(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","totalResults":2}`))
	}))
	defer server.Close()

	var out struct {
		Status       string `json:"status"`
		TotalResults int    `json:"totalResults"`
	}
	err := testClient(time.Second).GetJSON(context.Background(), server.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, 2, out.TotalResults)
}

func TestGetJSON_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	var out map[string]interface{}
	err := testClient(time.Second).GetJSON(context.Background(), server.URL, &out)
	assert.Error(t, err)
}

func TestGetBody_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`slow down`))
	}))
	defer server.Close()

	_, err := testClient(time.Second).GetBody(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "slow down", statusErr.Body)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.True(t, IsRateLimitStatus(statusErr.StatusCode))
}

func TestNoRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(time.Second).GetBody(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := testClient(50*time.Millisecond).GetBody(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestFailedRequestRedactsKey(t *testing.T) {
	client := testClient(time.Second)
	_, err := client.Get(context.Background(), "http://127.0.0.1:1/query?function=GLOBAL_QUOTE&apikey=secret123")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret123")
}

func TestLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	// burst of one, then nothing for an hour
	client := testClient(time.Second).WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1))

	_, err := client.GetBody(context.Background(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.GetBody(ctx, server.URL)
	assert.Error(t, err)
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	resp, err := testClient(time.Second).PostJSON(context.Background(), server.URL, map[string]string{"ticker": "MSFT"})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in       string
		contains string
		hidden   string
	}{
		{"https://www.alphavantage.co/query?function=GLOBAL_QUOTE&symbol=MSFT&apikey=abc", "REDACTED", "abc"},
		{"https://newsapi.org/v2/everything?q=Microsoft&apiKey=xyz", "REDACTED", "xyz"},
		{"https://news.google.com/rss/search?q=Microsoft", "q=Microsoft", ""},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			got := RedactURL(tt.in)
			assert.Contains(t, got, tt.contains)
			if tt.hidden != "" {
				assert.NotContains(t, got, tt.hidden)
			}
		})
	}
}

func TestIsRateLimitStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{429, true},
		{500, false},
		{503, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimitStatus(tt.statusCode))
		})
	}
}
