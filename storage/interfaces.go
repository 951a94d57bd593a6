package storage

import (
	"context"

	"airbnb-analytics/models"
)

// SnapshotArchive is the interface any snapshot archive backend must satisfy.
// It stores the typed input rows of a snapshot, never derived series.
type SnapshotArchive interface {
	SaveSnapshot(ctx context.Context, runID string, date models.SnapshotDate, listings []models.Listing) error
	CountSnapshot(ctx context.Context, date models.SnapshotDate) (int, error)
	Close() error
}

var (
	_ SnapshotArchive = (*SQLiteArchive)(nil)
	_ SnapshotArchive = (*PostgresArchive)(nil)
)
