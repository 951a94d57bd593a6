package services

import (
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"airbnb-analytics/models"
)

const (
	// dateTokenLen is the width of the YYYY-MM-DD token.
	dateTokenLen = 10
	// dateTokenTail is the number of characters after the token, e.g. ".csv".
	dateTokenTail = 4
)

var dateTokenRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DatedSnapshot pairs a snapshot file name with the date embedded in it.
type DatedSnapshot struct {
	Name string
	Date models.SnapshotDate
}

// ParseSnapshotDate extracts the date from a name ending in
// "_YYYY-MM-DD.csv". The token is read from a fixed position counted from
// the end of the base name and must be a real calendar date.
func ParseSnapshotDate(name string) (models.SnapshotDate, error) {
	base := filepath.Base(name)
	if len(base) < dateTokenLen+dateTokenTail {
		return models.SnapshotDate{}, &SnapshotNameError{Name: name, Token: base}
	}

	token := base[len(base)-dateTokenLen-dateTokenTail : len(base)-dateTokenTail]
	if !dateTokenRegexp.MatchString(token) {
		return models.SnapshotDate{}, &SnapshotNameError{Name: name, Token: token}
	}

	t, err := time.Parse("2006-01-02", token)
	if err != nil {
		return models.SnapshotDate{}, &SnapshotNameError{Name: name, Token: token, Err: err}
	}
	return models.SnapshotDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// SortSnapshots parses the date of every name and returns them oldest first.
// Equal dates are ordered by name, so the result does not depend on input
// order. Any unparseable name fails the whole call.
func SortSnapshots(names []string) ([]DatedSnapshot, error) {
	dated := make([]DatedSnapshot, 0, len(names))
	for _, name := range names {
		d, err := ParseSnapshotDate(name)
		if err != nil {
			return nil, err
		}
		dated = append(dated, DatedSnapshot{Name: name, Date: d})
	}

	sort.SliceStable(dated, func(i, j int) bool {
		ki, kj := dated[i].Date.Key(), dated[j].Date.Key()
		if ki != kj {
			return ki < kj
		}
		return dated[i].Name < dated[j].Name
	})
	return dated, nil
}

// OrderSnapshots returns names sorted chronologically by embedded date.
func OrderSnapshots(names []string) ([]string, error) {
	dated, err := SortSnapshots(names)
	if err != nil {
		return nil, err
	}
	ordered := make([]string, len(dated))
	for i, d := range dated {
		ordered[i] = d.Name
	}
	return ordered, nil
}
