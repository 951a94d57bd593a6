package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS snapshot_listings (
		snapshot_date        TEXT    NOT NULL,
		room_id              INTEGER NOT NULL,
		host_id              INTEGER NOT NULL,
		room_type            TEXT    NOT NULL,
		neighborhood         TEXT    NOT NULL DEFAULT '',
		reviews              INTEGER NOT NULL DEFAULT 0,
		overall_satisfaction REAL    NOT NULL DEFAULT 0,
		price                REAL    NOT NULL,
		run_id               TEXT    NOT NULL,
		PRIMARY KEY (snapshot_date, room_id)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshot_listings_room ON snapshot_listings(room_id);
`

// SQLiteArchive archives snapshot rows in a local SQLite database file.
type SQLiteArchive struct {
	sqlArchive
}

// NewSQLiteArchive opens (creating if needed) the database at path and runs
// the schema migration.
func NewSQLiteArchive(ctx context.Context, path string) (*SQLiteArchive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	a := &SQLiteArchive{sqlArchive{
		db:          db,
		placeholder: func(int) string { return "?" },
	}}
	if err := a.migrate(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return a, nil
}
