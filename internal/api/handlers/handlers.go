// Package handlers implements the HTTP and websocket endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/clientintel/internal/archive"
	"github.com/wonny/clientintel/internal/contracts"
)

// NewsFetcher runs one news provider in one mode
type NewsFetcher interface {
	Fetch(ctx context.Context, query string, mode contracts.NewsMode) ([]contracts.Article, error)
}

// Briefer produces briefings and standalone insights
type Briefer interface {
	GenerateBriefing(ctx context.Context, company, ticker string) (*contracts.Briefing, error)
	Insights(ctx context.Context, company string, rec *contracts.PerformanceRecord, articles []contracts.Article) *contracts.Insights
}

// Archive reads and writes stored briefings
type Archive interface {
	Save(ctx context.Context, b *contracts.Briefing) error
	Recent(ctx context.Context, ticker string, limit int) ([]archive.Summary, error)
	Get(ctx context.Context, id string) (*contracts.Briefing, error)
}

// Services bundles the operations exposed over HTTP and the tool socket.
// Archive may be nil.
type Services struct {
	Tickers   contracts.TickerSearcher
	Quotes    contracts.QuoteProvider
	News      NewsFetcher
	Briefings Briefer
	Archive   Archive
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrConfigurationMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, contracts.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, contracts.ErrDataUnavailable),
		errors.Is(err, contracts.ErrProviderError),
		errors.Is(err, contracts.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
