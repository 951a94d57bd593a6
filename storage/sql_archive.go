package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"airbnb-analytics/models"
)

const listingColumns = 9

// sqlArchive holds the statements shared by the SQLite and Postgres backends.
// placeholder renders the n-th (1-based) bind parameter of the dialect.
type sqlArchive struct {
	db          *sql.DB
	placeholder func(n int) string
}

func (a *sqlArchive) migrate(ctx context.Context, ddl string) error {
	_, err := a.db.ExecContext(ctx, ddl)
	return err
}

// SaveSnapshot replaces every archived row of date with listings inside one
// transaction. Repeated room ids keep their first row.
func (a *sqlArchive) SaveSnapshot(ctx context.Context, runID string, date models.SnapshotDate, listings []models.Listing) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM snapshot_listings WHERE snapshot_date = "+a.placeholder(1),
		date.String()); err != nil {
		return fmt.Errorf("archive: clear %s: %w", date, err)
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := a.insertBatch(ctx, tx, runID, date, listings[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit %s: %w", date, err)
	}
	return nil
}

func (a *sqlArchive) insertBatch(ctx context.Context, tx *sql.Tx, runID string, date models.SnapshotDate, batch []models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		ph := make([]string, listingColumns)
		for c := range ph {
			ph[c] = a.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			date.String(), l.RoomID, l.HostID, l.RoomType, l.Neighborhood,
			l.Reviews, l.OverallSatisfaction, l.Price, runID)
	}

	query := fmt.Sprintf(`
		INSERT INTO snapshot_listings
			(snapshot_date, room_id, host_id, room_type, neighborhood, reviews, overall_satisfaction, price, run_id)
		VALUES %s
		ON CONFLICT (snapshot_date, room_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("archive: insert batch: %w", err)
	}
	return nil
}

// CountSnapshot returns the number of archived rows for date.
func (a *sqlArchive) CountSnapshot(ctx context.Context, date models.SnapshotDate) (int, error) {
	var n int
	err := a.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM snapshot_listings WHERE snapshot_date = "+a.placeholder(1),
		date.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("archive: count %s: %w", date, err)
	}
	return n, nil
}

func (a *sqlArchive) Close() error {
	return a.db.Close()
}
