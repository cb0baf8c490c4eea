package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/clientintel/internal/scheduler"
	"github.com/wonny/clientintel/pkg/logger"
)

// BriefingPruner removes archived briefings older than a cutoff
type BriefingPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiveRetentionJob deletes archived briefings past their retention
type ArchiveRetentionJob struct {
	pruner    BriefingPruner
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewArchiveRetentionJob creates a new retention job
func NewArchiveRetentionJob(pruner BriefingPruner, retention time.Duration, log *logger.Logger) *ArchiveRetentionJob {
	if log == nil {
		log = logger.Nop()
	}
	return &ArchiveRetentionJob{
		pruner:    pruner,
		retention: retention,
		now:       time.Now,
		logger:    log.WithComponent("archive_retention"),
	}
}

// Name returns the job name
func (j *ArchiveRetentionJob) Name() string {
	return "archive_retention"
}

// Schedule returns the cron schedule (daily at 03:00)
func (j *ArchiveRetentionJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run executes the prune
func (j *ArchiveRetentionJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	if j.retention <= 0 {
		j.logger.Debug("Archive retention disabled")
		return scheduler.Outcome{Detail: "retention disabled"}, nil
	}

	cutoff := j.now().Add(-j.retention)
	removed, err := j.pruner.Prune(ctx, cutoff)
	if err != nil {
		return scheduler.Outcome{Failed: 1}, fmt.Errorf("prune archive: %w", err)
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"cutoff":  cutoff,
		}).Info("Archive retention completed")
	}

	return scheduler.Outcome{
		Processed: int(removed),
		Detail:    "before " + cutoff.Format(time.RFC3339),
	}, nil
}
