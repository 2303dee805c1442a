package storage

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indeed-scraper/utils"
)

// Needs a disposable database: SCRAPER_POSTGRES_DSN=postgres://...
func TestPostgresWriter_Integration(t *testing.T) {
	dsn := os.Getenv("SCRAPER_POSTGRES_DSN")
	if testing.Short() || dsn == "" {
		t.Skip("set SCRAPER_POSTGRES_DSN to run against PostgreSQL")
	}
	defer utils.SetOutput(&bytes.Buffer{})()
	ctx := context.Background()

	w, err := NewPostgresWriter(ctx, dsn)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.EnsureSchema(ctx))
	_, err = w.pool.Exec(ctx, `TRUNCATE job_listings;`)
	require.NoError(t, err)

	n, err := w.WriteBatch(ctx, sampleListings())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = w.WriteBatch(ctx, sampleListings())
	require.NoError(t, err)
	assert.Zero(t, n)
}
