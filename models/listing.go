package models

import (
	"fmt"
	"time"
)

// SnapshotDate is the calendar date embedded in a snapshot file name.
type SnapshotDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Key returns the date as a YYYYMMDD integer, suitable for ordering.
func (d SnapshotDate) Key() int {
	return d.Year*10000 + int(d.Month)*100 + d.Day
}

func (d SnapshotDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is strictly earlier than other.
func (d SnapshotDate) Before(other SnapshotDate) bool {
	return d.Key() < other.Key()
}

// Time returns midnight UTC of the date.
func (d SnapshotDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Row is one raw data line of a snapshot file, split on commas.
type Row struct {
	Line   int
	Fields []string
}

// Snapshot holds one exported CSV file, read in full and never mutated.
type Snapshot struct {
	Path   string
	Date   SnapshotDate
	Header []string
	Rows   []Row
}

// Listing is a fully typed snapshot row, used by the snapshot archive.
type Listing struct {
	RoomID              int64
	HostID              int64
	RoomType            string
	Neighborhood        string
	Reviews             int
	OverallSatisfaction float64
	Price               float64
}
