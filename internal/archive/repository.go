// Package archive persists finished briefings in PostgreSQL.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/database"
)

// ErrNotFound is returned by Get for an unknown id
var ErrNotFound = errors.New("briefing not found")

// MaxRecent bounds Recent
const MaxRecent = 100

var schema = []string{
	`CREATE TABLE IF NOT EXISTS briefings (
		id              UUID PRIMARY KEY,
		company         TEXT        NOT NULL,
		ticker          TEXT        NOT NULL,
		generated_at    TIMESTAMPTZ NOT NULL,
		article_count   INTEGER     NOT NULL,
		insights_status TEXT        NOT NULL,
		payload         JSONB       NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS briefings_generated_at_idx ON briefings (generated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS briefings_ticker_idx ON briefings (ticker, generated_at DESC)`,
}

// Summary is one row of the archive listing
type Summary struct {
	ID             string    `json:"id"`
	Company        string    `json:"company"`
	Ticker         string    `json:"ticker"`
	GeneratedAt    time.Time `json:"generated_at"`
	ArticleCount   int       `json:"article_count"`
	InsightsStatus string    `json:"insights_status"`
}

// Repository handles briefing persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new Repository instance
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the briefings table if needed
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.db.Exec(ctx, schema...); err != nil {
		return fmt.Errorf("ensure briefing schema: %w", err)
	}
	return nil
}

// Save stores a briefing. Saving the same id twice replaces the payload.
func (r *Repository) Save(ctx context.Context, b *contracts.Briefing) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal briefing: %w", err)
	}

	query := `
		INSERT INTO briefings (
			id,
			company,
			ticker,
			generated_at,
			article_count,
			insights_status,
			payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			article_count = EXCLUDED.article_count,
			insights_status = EXCLUDED.insights_status
	`

	_, err = r.db.Pool.Exec(ctx, query,
		b.ID,
		b.Company,
		b.Ticker,
		b.GeneratedAt,
		len(b.News),
		insightsStatus(b),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert briefing: %w", err)
	}

	return nil
}

// Recent lists the newest briefings, optionally filtered by ticker
func (r *Repository) Recent(ctx context.Context, ticker string, limit int) ([]Summary, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}

	query := `
		SELECT
			id::text,
			company,
			ticker,
			generated_at,
			article_count,
			insights_status
		FROM briefings
		WHERE ($1 = '' OR ticker = $1)
		ORDER BY generated_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent briefings: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Company, &s.Ticker, &s.GeneratedAt, &s.ArticleCount, &s.InsightsStatus); err != nil {
			return nil, fmt.Errorf("scan briefing summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate briefing summaries: %w", err)
	}

	return summaries, nil
}

// Get loads one archived briefing
func (r *Repository) Get(ctx context.Context, id string) (*contracts.Briefing, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT payload FROM briefings WHERE id::text = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query briefing: %w", err)
	}

	return decode(payload)
}

func decode(payload []byte) (*contracts.Briefing, error) {
	var b contracts.Briefing
	if err := json.Unmarshal(payload, &b); err != nil {
		return nil, fmt.Errorf("unmarshal briefing: %w", err)
	}
	return &b, nil
}

func insightsStatus(b *contracts.Briefing) string {
	if b.Insights == nil {
		return contracts.InsightsDisabled
	}
	return b.Insights.Status
}

// Prune deletes briefings generated before cutoff and returns how many were removed
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM briefings WHERE generated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune briefings: %w", err)
	}
	return tag.RowsAffected(), nil
}
