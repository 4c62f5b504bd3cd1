package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresSourceRepository tracks registered feed sources and their fetch
// bookkeeping.
type PostgresSourceRepository struct {
	db *DB
}

var _ SourceRepository = (*PostgresSourceRepository)(nil)

func NewSourceRepository(db *DB) *PostgresSourceRepository {
	return &PostgresSourceRepository{db: db}
}

func (r *PostgresSourceRepository) UpsertSource(ctx context.Context, name, feedURL string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_sources (name, feed_url)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			feed_url = EXCLUDED.feed_url,
			updated_at = NOW()
	`, name, feedURL)

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

func (r *PostgresSourceRepository) GetSource(ctx context.Context, name string) (*Source, error) {
	var s Source
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, feed_url, last_fetched_at, next_fetch_at,
		       last_processed, last_failed, created_at, updated_at
		FROM sync_sources
		WHERE name = $1
	`, name).Scan(
		&s.ID, &s.Name, &s.FeedURL, &s.LastFetchedAt, &s.NextFetchAt,
		&s.LastProcessed, &s.LastFailed, &s.CreatedAt, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &s, nil
}

func (r *PostgresSourceRepository) UpdateSourceRun(ctx context.Context, name string, processed, failed int, nextFetch time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_sources
		SET last_fetched_at = NOW(), next_fetch_at = $2,
		    last_processed = $3, last_failed = $4, updated_at = NOW()
		WHERE name = $1
	`, name, nextFetch, processed, failed)

	if err != nil {
		return fmt.Errorf("failed to update source run: %w", err)
	}

	return nil
}
