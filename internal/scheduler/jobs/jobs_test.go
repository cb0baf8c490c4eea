package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/internal/scheduler"
	"github.com/wonny/clientintel/pkg/config"
	"github.com/wonny/clientintel/pkg/logger"
)

var (
	_ scheduler.Job = (*WatchlistBriefingJob)(nil)
	_ scheduler.Job = (*ArchiveRetentionJob)(nil)
)

type fakeGenerator struct {
	fail map[string]bool
	seen []string
}

func (f *fakeGenerator) GenerateBriefing(ctx context.Context, company, ticker string) (*contracts.Briefing, error) {
	f.seen = append(f.seen, ticker)
	if f.fail[ticker] {
		return nil, contracts.ErrDataUnavailable
	}
	return &contracts.Briefing{ID: "id-" + ticker, Company: company, Ticker: ticker}, nil
}

type recorder struct {
	mu    sync.Mutex
	saved []string
	sent  []string
	err   error
}

func (r *recorder) Save(ctx context.Context, b *contracts.Briefing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, b.Ticker)
	return r.err
}

func (r *recorder) Send(b *contracts.Briefing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, b.Ticker)
	return r.err
}

var watchlist = []config.WatchlistEntry{
	{Company: "Microsoft", Ticker: "MSFT"},
	{Company: "Apple", Ticker: "AAPL"},
	{Company: "Nvidia", Ticker: "NVDA"},
}

func TestWatchlistBriefingJob_PartialFailure(t *testing.T) {
	gen := &fakeGenerator{fail: map[string]bool{"AAPL": true}}
	rec := &recorder{}
	job := NewWatchlistBriefingJob(gen, rec, rec, watchlist, "0 30 7 * * 1-5", logger.Nop())

	assert.Equal(t, "watchlist_briefing", job.Name())
	assert.Equal(t, "0 30 7 * * 1-5", job.Schedule())

	outcome, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scheduler.Outcome{Processed: 2, Failed: 1, Detail: "2/3 briefings"}, outcome)
	assert.Equal(t, []string{"MSFT", "AAPL", "NVDA"}, gen.seen)
	assert.Equal(t, []string{"MSFT", "NVDA"}, rec.saved)
	assert.Equal(t, []string{"MSFT", "NVDA"}, rec.sent)
}

func TestWatchlistBriefingJob_AllFail(t *testing.T) {
	gen := &fakeGenerator{fail: map[string]bool{"MSFT": true, "AAPL": true, "NVDA": true}}
	job := NewWatchlistBriefingJob(gen, nil, nil, watchlist, "@daily", nil)

	outcome, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, outcome.Failed)
	assert.True(t, errors.Is(err, contracts.ErrDataUnavailable))
	assert.Contains(t, err.Error(), "NVDA")
}

func TestWatchlistBriefingJob_SinkErrorsDoNotFail(t *testing.T) {
	rec := &recorder{err: errors.New("db down")}
	job := NewWatchlistBriefingJob(&fakeGenerator{}, rec, rec, watchlist[:1], "@daily", logger.Nop())

	outcome, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Processed)
	assert.Equal(t, []string{"MSFT"}, rec.saved)
	assert.Equal(t, []string{"MSFT"}, rec.sent)
}

func TestWatchlistBriefingJob_EmptyAndCancelled(t *testing.T) {
	empty := NewWatchlistBriefingJob(&fakeGenerator{}, nil, nil, nil, "@daily", logger.Nop())
	outcome, err := empty.Run(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, outcome.Processed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{}
	job := NewWatchlistBriefingJob(gen, nil, nil, watchlist, "@daily", logger.Nop())
	_, err = job.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, gen.seen)
}

type fakePruner struct {
	cutoff time.Time
	n      int64
	err    error
}

func (f *fakePruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.n, f.err
}

func TestArchiveRetentionJob(t *testing.T) {
	now := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	pruner := &fakePruner{n: 3}
	job := NewArchiveRetentionJob(pruner, 90*24*time.Hour, logger.Nop())
	job.now = func() time.Time { return now }

	outcome, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Processed)
	assert.Equal(t, now.AddDate(0, 0, -90), pruner.cutoff)

	pruner.err = errors.New("timeout")
	_, err = job.Run(context.Background())
	assert.Error(t, err)

	disabled := NewArchiveRetentionJob(&fakePruner{err: errors.New("never called")}, 0, logger.Nop())
	outcome, err = disabled.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "retention disabled", outcome.Detail)
}
