// Package narrative turns briefing facts into a short analysis through a retried generator.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/logger"
)

// Retry defaults: 4 attempts, waiting 15s, 30s, 60s after rate-limit failures
const (
	DefaultMaxAttempts = 4
	DefaultBaseDelay   = 15 * time.Second
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Retrier wraps a NarrativeGenerator with bounded retry on rate limiting.
// Any other failure is returned immediately.
// ⭐ SSOT: the only retry loop in the briefing path
type Retrier struct {
	generator   contracts.NarrativeGenerator
	logger      *logger.Logger
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
}

// NewRetrier creates a Retrier with the default attempt budget
func NewRetrier(generator contracts.NarrativeGenerator, log *logger.Logger) *Retrier {
	if log == nil {
		log = logger.Nop()
	}
	return &Retrier{
		generator:   generator,
		logger:      log.WithComponent("narrative"),
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       sleepContext,
	}
}

// WithSleep replaces the wait function. Tests use it to skip real delays.
func (r *Retrier) WithSleep(sleep SleepFunc) *Retrier {
	r.sleep = sleep
	return r
}

// WithBaseDelay sets the first backoff delay; later delays double it
func (r *Retrier) WithBaseDelay(d time.Duration) *Retrier {
	r.baseDelay = d
	return r
}

// Name returns the wrapped generator's provenance name
func (r *Retrier) Name() string {
	return r.generator.Name()
}

// Generate returns generated text or an error wrapping contracts.ErrGenerationFailed
func (r *Retrier) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		text, err := r.generator.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !errors.Is(err, contracts.ErrRateLimited) {
			return "", fmt.Errorf("%w: %w", contracts.ErrGenerationFailed, err)
		}
		if attempt == r.maxAttempts-1 {
			break
		}

		delay := r.baseDelay << attempt
		r.logger.WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).Warn("Narrative generator rate limited, backing off")

		if err := r.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %w", contracts.ErrGenerationFailed, err)
		}
	}

	return "", fmt.Errorf("%w: retries exhausted after %d attempts: %w", contracts.ErrGenerationFailed, r.maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
