package contracts

import "errors"

// Error taxonomy shared by the briefing core and its adapters.
// Only ErrConfigurationMissing and ErrDataUnavailable ever reach a briefing caller.
var (
	// ErrConfigurationMissing means a required credential is absent. Deployment defect, never retried.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrDataUnavailable means the quote provider returned no usable quote
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrProviderError covers any news-stage network, auth, parse or throttling failure
	ErrProviderError = errors.New("provider error")

	// ErrGenerationFailed means the narrative generator gave up
	ErrGenerationFailed = errors.New("generation failed")

	// ErrRateLimited marks a rate-limit-class failure. Only the narrative retry loop acts on it.
	ErrRateLimited = errors.New("rate limited")
)
