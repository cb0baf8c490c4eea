package contracts

import "context"

// QuoteProvider returns one normalized quote per ticker.
// Failures wrap ErrDataUnavailable.
// ⭐ SSOT: quote acquisition contract
type QuoteProvider interface {
	Name() string
	FetchQuote(ctx context.Context, ticker string) (*PerformanceRecord, error)
}

// TickerSearcher maps a company name to ticker candidates
type TickerSearcher interface {
	SearchTicker(ctx context.Context, company string) (*TickerResult, error)
}

// NewsProvider returns up to limit valid articles for query in the given mode.
// Failures wrap ErrProviderError. A provider that does not support mode returns an error.
// ⭐ SSOT: news acquisition contract
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, query string, mode NewsMode, limit int) ([]Article, error)
}

// NarrativeGenerator makes a single generation attempt.
// Throttling failures wrap ErrRateLimited.
type NarrativeGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
