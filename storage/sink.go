package storage

import (
	"context"

	"indeed-scraper/models"
)

// Sink is an optional database destination written after the CSV file.
type Sink interface {
	Name() string
	EnsureSchema(ctx context.Context) error
	// WriteBatch stores listings, skipping seen keys already present,
	// and returns how many rows were new.
	WriteBatch(ctx context.Context, listings []models.Listing) (int, error)
	Close() error
}
