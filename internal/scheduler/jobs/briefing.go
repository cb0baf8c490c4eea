// Package jobs holds the scheduled jobs run by the scheduler.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/internal/scheduler"
	"github.com/wonny/clientintel/pkg/config"
	"github.com/wonny/clientintel/pkg/logger"
)

// BriefingGenerator produces one briefing
type BriefingGenerator interface {
	GenerateBriefing(ctx context.Context, company, ticker string) (*contracts.Briefing, error)
}

// BriefingSaver archives a briefing
type BriefingSaver interface {
	Save(ctx context.Context, b *contracts.Briefing) error
}

// BriefingSender delivers a briefing
type BriefingSender interface {
	Send(b *contracts.Briefing) error
}

// WatchlistBriefingJob generates, archives and emails a briefing for every watchlist entry
// ⭐ SSOT: recurring briefings are produced by this job only
type WatchlistBriefingJob struct {
	generator BriefingGenerator
	saver     BriefingSaver
	sender    BriefingSender
	watchlist []config.WatchlistEntry
	schedule  string
	logger    *logger.Logger
}

// NewWatchlistBriefingJob creates a new watchlist briefing job. saver and sender may be nil.
func NewWatchlistBriefingJob(gen BriefingGenerator, saver BriefingSaver, sender BriefingSender, watchlist []config.WatchlistEntry, schedule string, log *logger.Logger) *WatchlistBriefingJob {
	if log == nil {
		log = logger.Nop()
	}
	return &WatchlistBriefingJob{
		generator: gen,
		saver:     saver,
		sender:    sender,
		watchlist: watchlist,
		schedule:  schedule,
		logger:    log.WithComponent("watchlist_briefing"),
	}
}

// Name returns the job name
func (j *WatchlistBriefingJob) Name() string {
	return "watchlist_briefing"
}

// Schedule returns the cron schedule (weekdays before the US open by default)
func (j *WatchlistBriefingJob) Schedule() string {
	return j.schedule
}

// Run briefs every entry in order. A failing entry is logged and skipped.
// The run fails only when no entry produced a briefing.
func (j *WatchlistBriefingJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	if len(j.watchlist) == 0 {
		j.logger.Info("Watchlist is empty, nothing to brief")
		return scheduler.Outcome{Detail: "empty watchlist"}, nil
	}

	j.logger.WithField("entries", len(j.watchlist)).Info("Starting scheduled watchlist briefings")

	var errs []error
	produced := 0

	for _, entry := range j.watchlist {
		if err := ctx.Err(); err != nil {
			return scheduler.Outcome{Processed: produced, Failed: len(errs)}, err
		}

		if err := j.briefOne(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Ticker, err))
			j.logger.WithError(err).
				WithFields(map[string]interface{}{"company": entry.Company, "ticker": entry.Ticker}).
				Warn("Watchlist briefing failed")
			continue
		}
		produced++
	}

	j.logger.WithFields(map[string]interface{}{
		"produced": produced,
		"failed":   len(errs),
	}).Info("Scheduled watchlist briefings completed")

	outcome := scheduler.Outcome{
		Processed: produced,
		Failed:    len(errs),
		Detail:    fmt.Sprintf("%d/%d briefings", produced, len(j.watchlist)),
	}
	if produced == 0 {
		return outcome, errors.Join(errs...)
	}
	return outcome, nil
}

// briefOne generates a briefing; archive and email failures are logged only
func (j *WatchlistBriefingJob) briefOne(ctx context.Context, entry config.WatchlistEntry) error {
	b, err := j.generator.GenerateBriefing(ctx, entry.Company, entry.Ticker)
	if err != nil {
		return err
	}

	log := j.logger.WithFields(map[string]interface{}{"ticker": entry.Ticker, "briefing_id": b.ID})

	if j.saver != nil {
		if err := j.saver.Save(ctx, b); err != nil {
			log.WithError(err).Warn("Failed to archive briefing")
		}
	}

	if j.sender != nil {
		if err := j.sender.Send(b); err != nil {
			log.WithError(err).Warn("Failed to email briefing")
		}
	}

	return nil
}
