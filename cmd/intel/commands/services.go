package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/clientintel/internal/archive"
	"github.com/wonny/clientintel/internal/briefing"
	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/internal/external/alphavantage"
	"github.com/wonny/clientintel/internal/external/gemini"
	"github.com/wonny/clientintel/internal/external/googlenews"
	"github.com/wonny/clientintel/internal/external/newsapi"
	"github.com/wonny/clientintel/internal/narrative"
	"github.com/wonny/clientintel/internal/news"
	"github.com/wonny/clientintel/internal/notify"
	"github.com/wonny/clientintel/internal/ticker"
	"github.com/wonny/clientintel/pkg/config"
	"github.com/wonny/clientintel/pkg/database"
	"github.com/wonny/clientintel/pkg/httputil"
	"github.com/wonny/clientintel/pkg/logger"
	"github.com/wonny/clientintel/pkg/redis"
)

// services is the fully wired object graph shared by every command
type services struct {
	cfg    *config.Config
	logger *logger.Logger

	redis   *redis.Client
	db      *database.DB
	quotes  *alphavantage.Client
	tickers *ticker.Resolver
	news    *news.Aggregator
	orch    *briefing.Orchestrator
	archive *archive.Repository // nil when DATABASE_URL is unset
	mailer  *notify.Mailer
}

// loadConfig reads configuration and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// buildServices wires config into providers, the news cascade, the narrative
// retry wrapper and the orchestrator. Missing provider keys fail here.
func buildServices(ctx context.Context, cfg *config.Config, log *logger.Logger) (*services, error) {
	if err := cfg.RequireProviders(); err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrConfigurationMissing, err)
	}

	s := &services{cfg: cfg, logger: log}

	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		// the cache and shared limiter are optional
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = redis.Disabled()
	}
	s.redis = rdb

	// one HTTP client per provider: user agents and limiters differ
	avHTTP := httputil.New(cfg, log).
		WithLimiter(rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.AlphaVantage.RatePerMinute)), 1))
	if rdb.Enabled() {
		avHTTP.WithRateLimiter(redis.NewRateLimiter(rdb, "clientintel"), redis.AlphaVantageRateLimit(cfg.AlphaVantage.RatePerMinute))
	}

	s.quotes, err = alphavantage.NewClient(avHTTP, cfg.AlphaVantage.APIKey, cfg.AlphaVantage.BaseURL, log)
	if err != nil {
		return nil, err
	}

	premium, err := newsapi.NewClient(httputil.New(cfg, log), cfg.NewsAPI.APIKey, cfg.NewsAPI.BaseURL, cfg.NewsAPI.Domains, log)
	if err != nil {
		return nil, err
	}
	feed := googlenews.NewClient(httputil.New(cfg, log), cfg.GoogleNews.BaseURL, cfg.GoogleNews.UserAgent, log)
	s.news = news.NewAggregator(premium, feed, log)

	var cache ticker.Cache
	if rdb.Enabled() {
		cache = redis.NewCache(rdb, "clientintel")
	}
	s.tickers = ticker.NewResolver(s.quotes, cache, log)

	var summarizer briefing.Summarizer
	if cfg.NarrativeEnabled() {
		gen, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			return nil, err
		}
		summarizer = narrative.NewSummarizer(narrative.NewRetrier(gen, log))
	} else {
		log.Info("Narrative generation disabled")
	}

	s.orch, err = briefing.NewOrchestrator(s.quotes, s.news, summarizer, log)
	if err != nil {
		return nil, err
	}

	if err := s.openArchive(ctx); err != nil {
		s.Close()
		return nil, err
	}

	s.mailer = notify.NewMailer(cfg.SMTP, log)

	return s, nil
}

// openArchive connects the briefing archive when DATABASE_URL is set
func (s *services) openArchive(ctx context.Context) error {
	db, err := database.New(ctx, s.cfg)
	if errors.Is(err, database.ErrNotConfigured) {
		s.logger.Debug("Briefing archive disabled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	repo := archive.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.archive = repo
	return nil
}

// Close releases the database pool and the redis connection
func (s *services) Close() {
	if s.db != nil {
		s.db.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close redis")
		}
	}
}
