package archive

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/config"
	"github.com/wonny/clientintel/pkg/database"
)

func sampleBriefing(t *testing.T) *contracts.Briefing {
	t.Helper()
	rec, err := contracts.NewPerformanceRecord(contracts.Quote{
		Symbol: "MSFT", Price: 300, Change: 5, ChangePercent: "1.6949%",
		Open: 295, High: 302, Low: 294, Volume: 20_000_000, LatestTradingDay: "2024-05-01",
	})
	require.NoError(t, err)

	return &contracts.Briefing{
		ID:          uuid.NewString(),
		Company:     "Microsoft",
		Ticker:      "MSFT",
		GeneratedAt: time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC),
		Performance: rec,
		News:        []contracts.Article{{Title: "Microsoft beats", Source: "Reuters", URL: "https://reuters.com/a"}},
		Sources:     []string{contracts.SourceAlphaVantage, contracts.SourceNewsAPI},
		Insights:    &contracts.Insights{Status: contracts.InsightsDisabled, Symbol: "MSFT"},
		Cascade: []contracts.StageOutcome{
			{Stage: "A", Mode: contracts.ModeCurated, Provider: contracts.SourceNewsAPI, Status: contracts.StageOK, Fetched: 1, Added: 1},
		},
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	b := sampleBriefing(t)
	payload, err := json.Marshal(b)
	require.NoError(t, err)

	back, err := decode(payload)
	require.NoError(t, err)

	assert.Equal(t, b.ID, back.ID)
	assert.Equal(t, b.News, back.News)
	assert.Equal(t, b.Sources, back.Sources)
	assert.Equal(t, b.Performance.Quote(), back.Performance.Quote())
	assert.InDelta(t, 2.72, back.Performance.DayRangePercent(), 0.005)
	assert.Equal(t, contracts.StageOK, back.Cascade[0].Status)
}

func TestInsightsStatus(t *testing.T) {
	b := sampleBriefing(t)
	assert.Equal(t, contracts.InsightsDisabled, insightsStatus(b))

	b.Insights = &contracts.Insights{Status: contracts.InsightsOK}
	assert.Equal(t, contracts.InsightsOK, insightsStatus(b))

	b.Insights = nil
	assert.Equal(t, contracts.InsightsDisabled, insightsStatus(b))
}

func TestRepository_Integration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" || testing.Short() {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := database.New(ctx, &config.Config{Database: config.DatabaseConfig{URL: url, MaxConns: 2}})
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	b := sampleBriefing(t)
	require.NoError(t, repo.Save(ctx, b))
	require.NoError(t, repo.Save(ctx, b))

	got, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Company, got.Company)
	assert.Equal(t, b.Performance.Quote(), got.Performance.Quote())

	recent, err := repo.Recent(ctx, "MSFT", 5)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
	assert.Equal(t, "MSFT", recent[0].Ticker)

	_, err = repo.Get(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotFound))

	removed, err := repo.Prune(ctx, b.GeneratedAt.Add(time.Second))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))

	_, err = repo.Get(ctx, b.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
