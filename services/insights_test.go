package services

import (
	"errors"
	"math"
	"testing"
	"unicode/utf8"

	"airbnb-analytics/models"
)

func sampleSnapshot() *models.Snapshot {
	return snapshot("amsterdam_2016-12-15.csv", amsterdamHeader,
		listingLine(1, 100, "Entire home/apt", "Centrum", 10, "5.0", "200"),
		listingLine(2, 100, "Entire home/apt", "Centrum", 4, "4.5", "100"),
		listingLine(3, 100, "Private room", "Centrum", 0, "0", "60"),
		listingLine(4, 200, "Entire home/apt", "Oost", 2, "4.0", "120"),
		listingLine(5, 300, "Shared room", "Oost", 1, "3.5", "30"),
		listingLine(6, 400, "Entire home/apt", "Oost", 8, "4.5", "140"),
		"7,1,400,Entire home/apt,broken",
	)
}

func TestPriceSatisfactionSkipsUnreviewed(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	points, err := svc.PriceSatisfaction(sampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 5 {
		t.Fatalf("points: got %d, want 5", len(points))
	}
	if points[0] != (models.PricePoint{Price: 200, Satisfaction: 5}) {
		t.Errorf("first point: got %+v", points[0])
	}
}

func TestHostListingsAndHistogram(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	hosts, err := svc.HostListings(sampleSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if len(hosts) != 4 {
		t.Fatalf("hosts: got %d, want 4", len(hosts))
	}
	if rooms := hosts[100]; len(rooms) != 3 || rooms[0] != 1 || rooms[2] != 3 {
		t.Errorf("host 100 rooms: got %v, want [1 2 3]", rooms)
	}

	got := ListingHistogram(hosts)
	want := []int{0, 3, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("histogram: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("histogram[%d] = %d; want %d", i, got[i], want[i])
		}
	}

	if h := ListingHistogram(nil); len(h) != 1 || h[0] != 0 {
		t.Errorf("empty histogram: got %v, want [0]", h)
	}
}

func TestNeighborhoodPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	avg, err := svc.NeighborhoodPrices(sampleSnapshot(), "Entire home/apt")
	if err != nil {
		t.Fatal(err)
	}
	if len(avg) != 2 {
		t.Fatalf("neighborhoods: got %v", avg)
	}
	if !almostEqual(avg["Centrum"], 150) {
		t.Errorf("Centrum: got %.2f, want 150", avg["Centrum"])
	}
	if !almostEqual(avg["Oost"], 130) {
		t.Errorf("Oost: got %.2f, want 130", avg["Oost"])
	}
}

func TestInsightsMissingColumn(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	snap := snapshot("x_2016-10-15.csv", "room_id,room_type,price", "1,Entire home/apt,10")

	if _, err := svc.HostListings(snap); !errors.Is(err, ErrMissingField) {
		t.Errorf("HostListings: expected ErrMissingField, got %v", err)
	}
	if _, err := svc.NeighborhoodPrices(snap, "Entire home/apt"); !errors.Is(err, ErrMissingField) {
		t.Errorf("NeighborhoodPrices: expected ErrMissingField, got %v", err)
	}
}

func TestCorrelationMatchesReference(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{5, 6, 7, 8, 7}
	points := make([]models.PricePoint, len(x))
	for i := range x {
		points[i] = models.PricePoint{Price: x[i], Satisfaction: y[i]}
	}

	c, err := Correlation(points)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.Coefficient-0.8207826816681233) > 1e-9 {
		t.Errorf("coefficient: got %.12f", c.Coefficient)
	}
	if math.Abs(c.PValue-0.0885870053135438) > 1e-6 {
		t.Errorf("p-value: got %.12f", c.PValue)
	}
	if c.Samples != 5 {
		t.Errorf("samples: got %d", c.Samples)
	}
}

func TestCorrelationEdgeCases(t *testing.T) {
	perfect := []models.PricePoint{
		{Price: 1, Satisfaction: 1}, {Price: 2, Satisfaction: 2},
		{Price: 3, Satisfaction: 3}, {Price: 4, Satisfaction: 4},
	}
	c, err := Correlation(perfect)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.Coefficient-1) > 1e-12 || c.PValue > 1e-9 {
		t.Errorf("perfect: got (%v, %v), want (1, 0)", c.Coefficient, c.PValue)
	}

	constant := []models.PricePoint{
		{Price: 1, Satisfaction: 4}, {Price: 2, Satisfaction: 4}, {Price: 3, Satisfaction: 4},
	}
	c, err = Correlation(constant)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(c.Coefficient) || !math.IsNaN(c.PValue) {
		t.Errorf("constant: got (%v, %v), want NaN", c.Coefficient, c.PValue)
	}

	if _, err := Correlation(perfect[:2]); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("two points: expected ErrEmptyInput, got %v", err)
	}
}

func TestAverageRanksTies(t *testing.T) {
	got := averageRanks([]float64{10, 20, 10, 30})
	want := []float64{1.5, 3, 1.5, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank[%d] = %v; want %v", i, got[i], want[i])
		}
	}
}

func TestGenerateReport(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	build := &BuildResult{
		Snapshots: []DatedSnapshot{
			{Name: "a_2016-10-15.csv", Date: date(2016, 10, 15)},
			{Name: "a_2016-12-15.csv", Date: date(2016, 12, 15)},
		},
		Series: seriesSet(map[int64][]float64{1: {100, 120}, 2: {50, 40}}),
	}
	trend := &models.TrendResult{Winner: &models.TrendRecord{RoomID: 1, PercentChange: 20, StartPrice: 100, EndPrice: 120}, Evaluated: 2}

	r, err := svc.Generate(InsightInput{
		Build:                build,
		Trend:                trend,
		RoomType:             "Entire home/apt",
		Snapshot:             sampleSnapshot(),
		NeighborhoodRoomType: "Entire home/apt",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if r.SnapshotCount != 2 || r.TrackedRooms != 2 {
		t.Errorf("overview: got %d snapshots, %d rooms", r.SnapshotCount, r.TrackedRooms)
	}
	if r.FirstSnapshot != date(2016, 10, 15) || r.LastSnapshot != date(2016, 12, 15) {
		t.Errorf("range: got %s -> %s", r.FirstSnapshot, r.LastSnapshot)
	}
	if r.Correlation == nil || r.Correlation.Samples != 5 {
		t.Errorf("correlation: got %+v", r.Correlation)
	}
	if r.Hosts != 4 || len(r.ListingHistogram) != 4 {
		t.Errorf("hosts: got %d, histogram %v", r.Hosts, r.ListingHistogram)
	}
	if len(r.NeighborhoodPrices) != 2 {
		t.Errorf("neighborhoods: got %v", r.NeighborhoodPrices)
	}
}

func TestGenerateWithoutInsightSnapshot(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r, err := svc.Generate(InsightInput{RoomType: "Private room"})
	if err != nil {
		t.Fatal(err)
	}
	if r.InsightSnapshot != "" || r.Correlation != nil || r.Hosts != 0 {
		t.Errorf("expected empty insights, got %+v", r)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	name := "Göteborg Östermalm Södermalm Åre Mölndal"
	got := truncate(name, 20)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 20 {
		t.Errorf("rune count: got %d, want 20", n)
	}
	if got != "Göteborg Östermal..." {
		t.Errorf("got %q", got)
	}
	if s := truncate("Centrum-West", 20); s != "Centrum-West" {
		t.Errorf("short name changed: %q", s)
	}
}
