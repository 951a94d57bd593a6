package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"airbnb-analytics/models"
)

// TrendCSVWriter writes ranked trend records to a CSV report file.
type TrendCSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewTrendCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewTrendCSVWriter(path string) (*TrendCSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"room_id", "first_snapshot", "last_snapshot", "observations",
		"start_price", "end_price", "percent_change",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &TrendCSVWriter{file: f, writer: w}, nil
}

// WriteTrends appends one line per trend record, in the order given.
func (c *TrendCSVWriter) WriteTrends(records []models.TrendRecord) error {
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.RoomID, 10),
			r.FirstSeen.String(),
			r.LastSeen.String(),
			strconv.Itoa(r.Observations),
			strconv.FormatFloat(r.StartPrice, 'f', 2, 64),
			strconv.FormatFloat(r.EndPrice, 'f', 2, 64),
			strconv.FormatFloat(r.PercentChange, 'f', 4, 64),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *TrendCSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
