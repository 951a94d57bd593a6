package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"airbnb-analytics/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSnapshotReaderSplitsRows(t *testing.T) {
	path := writeFile(t, "amsterdam_2016-10-15.csv",
		"\ufeffroom_id,room_type,price\r\n"+
			"42,Entire home/apt,75\r\n"+
			"\r\n"+
			"43,Private room,40,extra\n")

	snap, err := NewCSVSnapshotReader().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(snap.Header) != 3 || snap.Header[0] != "room_id" || snap.Header[2] != "price" {
		t.Errorf("header: got %q", snap.Header)
	}
	if len(snap.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(snap.Rows))
	}
	if snap.Rows[0].Line != 2 || snap.Rows[0].Fields[2] != "75" {
		t.Errorf("row 0: got %+v", snap.Rows[0])
	}
	if snap.Rows[1].Line != 4 || len(snap.Rows[1].Fields) != 4 {
		t.Errorf("row 1: got %+v", snap.Rows[1])
	}
}

func TestSnapshotReaderMissingFile(t *testing.T) {
	if _, err := NewCSVSnapshotReader().Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTrendCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trends.csv")
	w, err := NewTrendCSVWriter(path)
	if err != nil {
		t.Fatalf("NewTrendCSVWriter: %v", err)
	}

	err = w.WriteTrends([]models.TrendRecord{{
		RoomID: 42, PercentChange: 20, StartPrice: 75, EndPrice: 90,
		FirstSeen:    models.SnapshotDate{Year: 2016, Month: time.October, Day: 15},
		LastSeen:     models.SnapshotDate{Year: 2016, Month: time.December, Day: 15},
		Observations: 3,
	}})
	if err != nil {
		t.Fatalf("WriteTrends: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Fatalf("records: got %d, want 2", len(records))
	}
	want := []string{"42", "2016-10-15", "2016-12-15", "3", "75.00", "90.00", "20.0000"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("column %d: got %q, want %q", i, records[1][i], v)
		}
	}
}

func TestSQLiteArchiveReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	a, err := NewSQLiteArchive(ctx, filepath.Join(t.TempDir(), "db", "snapshots.db"))
	if err != nil {
		t.Fatalf("NewSQLiteArchive: %v", err)
	}
	defer a.Close()

	date := models.SnapshotDate{Year: 2016, Month: time.October, Day: 15}
	listings := []models.Listing{
		{RoomID: 1, HostID: 10, RoomType: "Entire home/apt", Neighborhood: "Centrum", Reviews: 3, OverallSatisfaction: 4.5, Price: 100},
		{RoomID: 2, HostID: 10, RoomType: "Private room", Neighborhood: "Oost", Price: 50},
		{RoomID: 2, HostID: 11, RoomType: "Private room", Neighborhood: "Oost", Price: 55},
	}

	if err := a.SaveSnapshot(ctx, "run-1", date, listings); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	n, err := a.CountSnapshot(ctx, date)
	if err != nil {
		t.Fatalf("CountSnapshot: %v", err)
	}
	if n != 2 {
		t.Errorf("count after first save: got %d, want 2", n)
	}

	if err := a.SaveSnapshot(ctx, "run-2", date, listings[:1]); err != nil {
		t.Fatalf("SaveSnapshot (replace): %v", err)
	}
	if n, _ := a.CountSnapshot(ctx, date); n != 1 {
		t.Errorf("count after replace: got %d, want 1", n)
	}

	other := models.SnapshotDate{Year: 2016, Month: time.November, Day: 15}
	if n, _ := a.CountSnapshot(ctx, other); n != 0 {
		t.Errorf("count for unknown date: got %d, want 0", n)
	}
}

func TestSQLiteArchiveLargeBatch(t *testing.T) {
	ctx := context.Background()
	a, err := NewSQLiteArchive(ctx, filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("NewSQLiteArchive: %v", err)
	}
	defer a.Close()

	date := models.SnapshotDate{Year: 2017, Month: time.January, Day: 1}
	listings := make([]models.Listing, 0, 120)
	for i := 0; i < 120; i++ {
		listings = append(listings, models.Listing{RoomID: int64(i), HostID: 1, RoomType: "Shared room", Price: 20})
	}
	if err := a.SaveSnapshot(ctx, "run", date, listings); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if n, _ := a.CountSnapshot(ctx, date); n != 120 {
		t.Errorf("count: got %d, want 120", n)
	}
}

func TestListSnapshots(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_2016-11-15.csv", "a_2016-12-15.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("room_id\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "old.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := ListSnapshots(dir, "*.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a_2016-12-15.csv" {
		t.Errorf("files: got %v", files)
	}
}
