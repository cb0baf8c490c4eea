// Package briefing assembles company briefings from quote, news and narrative providers.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/internal/narrative"
	"github.com/wonny/clientintel/internal/news"
	"github.com/wonny/clientintel/pkg/logger"
)

// NewsCollector runs the news cascade for one briefing
type NewsCollector interface {
	Collect(ctx context.Context, company, ticker string) *news.Result
}

// Summarizer turns briefing facts into an insights bundle. It must not fail.
type Summarizer interface {
	Source() string
	Summarize(ctx context.Context, company string, rec *contracts.PerformanceRecord, articles []contracts.Article) *contracts.Insights
}

// Orchestrator builds briefings. It keeps no state between calls and is safe for
// concurrent use; every call owns its article list and source registry.
// ⭐ SSOT: briefing assembly happens only here
type Orchestrator struct {
	quotes     contracts.QuoteProvider
	news       NewsCollector
	summarizer Summarizer // nil disables the narrative
	logger     *logger.Logger
	now        func() time.Time
	newID      func() string
}

// NewOrchestrator wires the providers. quotes and collector are required;
// summarizer may be nil, in which case briefings carry facts only.
func NewOrchestrator(quotes contracts.QuoteProvider, collector NewsCollector, summarizer Summarizer, log *logger.Logger) (*Orchestrator, error) {
	if quotes == nil {
		return nil, fmt.Errorf("%w: quote provider", contracts.ErrConfigurationMissing)
	}
	if collector == nil {
		return nil, fmt.Errorf("%w: news collector", contracts.ErrConfigurationMissing)
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Orchestrator{
		quotes:     quotes,
		news:       collector,
		summarizer: summarizer,
		logger:     log.WithComponent("briefing"),
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

// GenerateBriefing fetches the quote (fatal on failure), runs the news cascade,
// optionally generates the narrative and assembles the briefing.
// The only errors returned wrap contracts.ErrDataUnavailable.
func (o *Orchestrator) GenerateBriefing(ctx context.Context, company, ticker string) (*contracts.Briefing, error) {
	company = strings.TrimSpace(company)
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if company == "" {
		company = ticker
	}

	log := o.logger.WithFields(map[string]interface{}{
		"company": company,
		"ticker":  ticker,
	})
	start := time.Now()

	rec, err := o.quotes.FetchQuote(ctx, ticker)
	if err != nil {
		log.WithError(err).Warn("Quote unavailable, aborting briefing")
		if !errors.Is(err, contracts.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %w", contracts.ErrDataUnavailable, err)
		}
		return nil, err
	}

	var registry contracts.SourceRegistry
	registry.Add(o.quotes.Name())

	collected := o.news.Collect(ctx, company, ticker)
	for _, name := range collected.Sources {
		registry.Add(name)
	}
	articles := news.Cap(collected.Articles, contracts.MaxBriefingArticles)
	if articles == nil {
		articles = []contracts.Article{}
	}

	var insights *contracts.Insights
	if o.summarizer == nil {
		insights = narrative.NewInsights(contracts.InsightsDisabled, company, rec, articles, o.now())
	} else {
		insights = o.summarizer.Summarize(ctx, company, rec, articles)
		if insights.Status == contracts.InsightsOK {
			registry.Add(o.summarizer.Source())
		} else {
			log.WithField("error", insights.Error).Warn("Narrative unavailable, returning facts only")
		}
	}

	b := &contracts.Briefing{
		ID:          o.newID(),
		Company:     company,
		Ticker:      ticker,
		GeneratedAt: o.now(),
		Performance: rec,
		News:        articles,
		Sources:     registry.Names(),
		Insights:    insights,
		Cascade:     collected.Stages,
	}

	log.WithFields(map[string]interface{}{
		"articles": len(b.News),
		"sources":  b.Sources,
		"insights": insights.Status,
		"duration": time.Since(start).String(),
	}).Info("Briefing generated")

	return b, nil
}

// Insights runs only the narrative step over caller-supplied facts
func (o *Orchestrator) Insights(ctx context.Context, company string, rec *contracts.PerformanceRecord, articles []contracts.Article) *contracts.Insights {
	if o.summarizer == nil {
		return narrative.NewInsights(contracts.InsightsDisabled, company, rec, articles, o.now())
	}
	return o.summarizer.Summarize(ctx, company, rec, articles)
}
