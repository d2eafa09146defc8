package store

import (
	"context"
	"fmt"
	"time"

	"github.com/chadmayfield/wxreport/internal/weather"
)

// Store defines the interface for imported record storage.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	// SaveImport stores an import batch and its records in a single transaction.
	SaveImport(ctx context.Context, imp *Import, records []weather.Record) error

	// LoadRecords returns every stored record in insertion order.
	LoadRecords(ctx context.Context) ([]weather.Record, error)

	// GetImports returns all import batches, oldest first.
	GetImports(ctx context.Context) ([]Import, error)

	// GetDataRange returns the oldest and newest record timestamps.
	GetDataRange(ctx context.Context) (oldest, newest time.Time, err error)

	// GetRecordCount returns the total number of stored records.
	GetRecordCount(ctx context.Context) (int, error)

	// Close closes the database connection.
	Close() error
}

// Import is one batch of records written by the import or backfill commands.
type Import struct {
	ID          string
	Source      string
	RecordCount int
	CreatedAt   time.Time
}

// Open opens the store for driver ("sqlite" or "postgres") at dsn.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		s, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
