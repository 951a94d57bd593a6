package services

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

const amsterdamHeader = "room_id,survey_id,host_id,room_type,country,city,borough,neighborhood,reviews,overall_satisfaction,accommodates,bedrooms,bathrooms,price,minstay,name,last_modified,latitude,longitude,location"

// writeSnapshot writes lines (header first) to dir/name and returns the path.
func writeSnapshot(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// snapshot builds an in-memory snapshot from a header line and data lines.
func snapshot(path string, header string, lines ...string) *models.Snapshot {
	snap := &models.Snapshot{Path: path, Header: strings.Split(header, ",")}
	for i, l := range lines {
		snap.Rows = append(snap.Rows, models.Row{Line: i + 2, Fields: strings.Split(l, ",")})
	}
	return snap
}

func date(y int, m int, d int) models.SnapshotDate {
	return models.SnapshotDate{Year: y, Month: time.Month(m), Day: d}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

// listingLine renders a data line matching amsterdamHeader.
func listingLine(roomID, hostID int, roomType, neighborhood string, reviews int, satisfaction, price string) string {
	return strings.Join([]string{
		itoa(roomID), "1", itoa(hostID), roomType, "", "Amsterdam", "", neighborhood,
		itoa(reviews), satisfaction, "2", "1", "", price, "", "listing", "2016-10-15", "52.3", "4.9", "0101",
	}, ",")
}

func itoa(n int) string { return strconv.Itoa(n) }
