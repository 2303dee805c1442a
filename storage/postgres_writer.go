package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"indeed-scraper/models"
	"indeed-scraper/utils"
)

type PostgresWriter struct {
	pool *pgxpool.Pool
}

// NewPostgresWriter connects to dsn and pings it, retrying while the server
// comes up.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	err = utils.Retry(ctx, 3, time.Second, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool}, nil
}

func (w *PostgresWriter) Name() string {
	return "PostgreSQL"
}

func (w *PostgresWriter) Close() error {
	if w.pool != nil {
		w.pool.Close()
	}
	return nil
}

func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS job_listings (
		id BIGSERIAL PRIMARY KEY,
		seen_key TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		location TEXT NOT NULL,
		job_link TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_job_listings_company ON job_listings(company);
	CREATE INDEX IF NOT EXISTS idx_job_listings_location ON job_listings(location);
	`

	if _, err := w.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func (w *PostgresWriter) WriteBatch(ctx context.Context, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	insertSQL := `
	INSERT INTO job_listings (seen_key, title, company, location, job_link, description)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (seen_key) DO NOTHING;
	`
	for _, l := range listings {
		batch.Queue(insertSQL, l.Key(), l.Title, l.Company, l.Location, l.URL, l.Description)
	}

	results := w.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := range listings {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
