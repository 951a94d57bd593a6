package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"airbnb-analytics/models"
)

// CSVSnapshotReader loads snapshot exports from the local filesystem.
// Lines are split on every comma; quoted fields are not supported, so a row
// whose text contains a comma ends up with too many fields and is later
// discarded by the column-count check.
type CSVSnapshotReader struct{}

// NewCSVSnapshotReader creates a CSVSnapshotReader.
func NewCSVSnapshotReader() *CSVSnapshotReader {
	return &CSVSnapshotReader{}
}

// Load opens path, reads the header and every non-blank data row, and closes
// the file before returning. The snapshot date is left for the caller to set.
func (r *CSVSnapshotReader) Load(path string) (*models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %q: %w", path, err)
	}
	defer f.Close()

	snap := &models.Snapshot{Path: path}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
			snap.Header = strings.Split(text, ",")
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		snap.Rows = append(snap.Rows, models.Row{Line: line, Fields: strings.Split(text, ",")})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("snapshot: read %q: %w", path, err)
	}

	return snap, nil
}

// ListSnapshots returns the files in dir matching pattern, sorted by name.
func ListSnapshots(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("snapshot: glob %q: %w", pattern, err)
	}
	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}
