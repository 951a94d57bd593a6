package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"airbnb-analytics/utils"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS snapshot_listings (
		snapshot_date        DATE          NOT NULL,
		room_id              BIGINT        NOT NULL,
		host_id              BIGINT        NOT NULL,
		room_type            VARCHAR(50)   NOT NULL,
		neighborhood         TEXT          NOT NULL DEFAULT '',
		reviews              INTEGER       NOT NULL DEFAULT 0,
		overall_satisfaction NUMERIC(4,2)  NOT NULL DEFAULT 0,
		price                NUMERIC(10,2) NOT NULL,
		run_id               UUID          NOT NULL,
		PRIMARY KEY (snapshot_date, room_id)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshot_listings_room      ON snapshot_listings(room_id);
	CREATE INDEX IF NOT EXISTS idx_snapshot_listings_room_type ON snapshot_listings(room_type);
`

// PostgresArchive archives snapshot rows in PostgreSQL.
type PostgresArchive struct {
	sqlArchive
}

// NewPostgresArchive opens a connection to PostgreSQL, retrying the initial
// ping, runs schema migrations, and returns a ready-to-use archive.
func NewPostgresArchive(ctx context.Context, dsn string, maxRetries int, logger *utils.Logger) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: maxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	a := &PostgresArchive{sqlArchive{
		db:          db,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}}
	if err := a.migrate(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return a, nil
}
