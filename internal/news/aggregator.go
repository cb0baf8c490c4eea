package news

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/logger"
)

// Stage names and limits of the cascade
const (
	StagePremium     = "A"
	StageSyndication = "B"
	StageFallback    = "C"

	PremiumLimit     = 5
	SyndicationLimit = 10
	FallbackLimit    = 5
)

// errNotConfigured marks a stage whose provider was not wired
var errNotConfigured = errors.New("provider not configured")

// Result is the outcome of one cascade run
type Result struct {
	Articles []contracts.Article
	Sources  []string
	Stages   []contracts.StageOutcome
}

// Aggregator drives the news cascade:
//
//	A  premium provider, curated financial domains, up to 5
//	B  syndication feed, up to 10, deduplicated against everything collected so far
//	C  premium provider, broad 30-day mode, up to 5, entered only when A and B left nothing
//
// Stages run sequentially because B dedups against A and C depends on both.
// Provider failures are absorbed into the stage outcome.
// ⭐ SSOT: the news cascade lives here
type Aggregator struct {
	premium contracts.NewsProvider
	feed    contracts.NewsProvider
	logger  *logger.Logger
}

// NewAggregator creates an aggregator. Either provider may be nil; its stages are then skipped.
func NewAggregator(premium, feed contracts.NewsProvider, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{
		premium: premium,
		feed:    feed,
		logger:  log.WithComponent("news"),
	}
}

// Collect runs the cascade for one briefing. It never fails.
func (a *Aggregator) Collect(ctx context.Context, company, ticker string) *Result {
	var (
		working  []contracts.Article
		registry contracts.SourceRegistry
		stages   []contracts.StageOutcome
	)

	// Stage A
	outcome, articles := a.runStage(ctx, StagePremium, a.premium, company, contracts.ModeCurated, PremiumLimit)
	working, outcome.Added = Merge(working, articles)
	if outcome.Fetched > 0 {
		registry.Add(outcome.Provider)
	}
	stages = append(stages, a.logged(outcome))

	// Stage B
	outcome, articles = a.runStage(ctx, StageSyndication, a.feed, syndicationQuery(company, ticker), contracts.ModeSyndication, SyndicationLimit)
	working, outcome.Added = Merge(working, articles)
	if outcome.Fetched > 0 {
		registry.Add(outcome.Provider)
	}
	stages = append(stages, a.logged(outcome))

	// Stage C
	if len(working) == 0 {
		outcome, articles = a.runStage(ctx, StageFallback, a.premium, company, contracts.ModeBroad, FallbackLimit)
		working, outcome.Added = Merge(working, articles)
		if outcome.Fetched > 0 {
			registry.Add(outcome.Provider)
		}
	} else {
		outcome = contracts.StageOutcome{
			Stage:    StageFallback,
			Mode:     contracts.ModeBroad,
			Provider: providerName(a.premium),
			Status:   contracts.StageSkipped,
		}
	}
	stages = append(stages, a.logged(outcome))

	return &Result{
		Articles: Cap(working, contracts.MaxBriefingArticles),
		Sources:  registry.Names(),
		Stages:   stages,
	}
}

// Fetch queries a single provider in mode with that mode's stage limit.
// Used by the individual news tools; errors are returned, not absorbed.
func (a *Aggregator) Fetch(ctx context.Context, query string, mode contracts.NewsMode) ([]contracts.Article, error) {
	var (
		provider contracts.NewsProvider
		limit    int
	)
	switch mode {
	case contracts.ModeCurated:
		provider, limit = a.premium, PremiumLimit
	case contracts.ModeBroad:
		provider, limit = a.premium, FallbackLimit
	case contracts.ModeSyndication:
		provider, limit = a.feed, SyndicationLimit
	default:
		return nil, fmt.Errorf("%w: unknown news mode %q", contracts.ErrProviderError, mode)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: %s mode", contracts.ErrConfigurationMissing, mode)
	}

	articles, err := provider.FetchNews(ctx, query, mode, limit)
	if err != nil {
		return nil, err
	}
	merged, _ := Merge(nil, articles)
	return Cap(merged, limit), nil
}

// runStage calls provider once and converts the result into a tagged outcome.
// Returned articles are valid and at most limit long.
func (a *Aggregator) runStage(ctx context.Context, stage string, provider contracts.NewsProvider, query string, mode contracts.NewsMode, limit int) (contracts.StageOutcome, []contracts.Article) {
	outcome := contracts.StageOutcome{
		Stage:    stage,
		Mode:     mode,
		Provider: providerName(provider),
	}

	if provider == nil {
		outcome.Status = contracts.StageFailed
		outcome.Err = errNotConfigured
		outcome.Error = errNotConfigured.Error()
		return outcome, nil
	}

	fetched, err := provider.FetchNews(ctx, query, mode, limit)
	if err != nil {
		outcome.Status = contracts.StageFailed
		outcome.Err = err
		outcome.Error = err.Error()
		return outcome, nil
	}

	articles := make([]contracts.Article, 0, len(fetched))
	for _, art := range fetched {
		if art.Valid() {
			articles = append(articles, art)
		}
	}
	articles = Cap(articles, limit)

	outcome.Fetched = len(articles)
	outcome.Status = contracts.StageOK
	if len(articles) == 0 {
		outcome.Status = contracts.StageEmpty
	}
	return outcome, articles
}

func (a *Aggregator) logged(o contracts.StageOutcome) contracts.StageOutcome {
	log := a.logger.WithFields(map[string]interface{}{
		"stage":    o.Stage,
		"mode":     string(o.Mode),
		"provider": o.Provider,
		"status":   string(o.Status),
		"fetched":  o.Fetched,
		"added":    o.Added,
	})
	if o.Status == contracts.StageFailed {
		log.WithError(o.Err).Warn("News stage failed, continuing cascade")
	} else {
		log.Debug("News stage finished")
	}
	return o
}

func syndicationQuery(company, ticker string) string {
	return strings.TrimSpace(strings.TrimSpace(company) + " " + strings.TrimSpace(ticker))
}

func providerName(p contracts.NewsProvider) string {
	if p == nil {
		return ""
	}
	return p.Name()
}
