package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indeed-scraper/models"
)

func TestSQLiteWriter_InsertsOncePerSeenKey(t *testing.T) {
	ctx := context.Background()
	w, err := NewSQLiteWriter(ctx, filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.EnsureSchema(ctx))
	require.NoError(t, w.EnsureSchema(ctx), "schema creation is idempotent")

	listings := sampleListings()
	n, err := w.WriteBatch(ctx, listings)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Same title/company/location on a second run adds nothing.
	again := listings[0]
	again.URL = "https://ca.indeed.com/viewjob?jk=99"
	n, err = w.WriteBatch(ctx, []models.Listing{again})
	require.NoError(t, err)
	assert.Zero(t, n)

	total, err := w.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	n, err = w.WriteBatch(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
