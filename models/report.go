package models

// PricePoint is a [price, satisfaction] pair of a reviewed listing.
type PricePoint struct {
	Price        float64
	Satisfaction float64
}

// Correlation is a rank correlation coefficient with its two-sided p-value.
type Correlation struct {
	Coefficient float64
	PValue      float64
	Samples     int
}

// InsightReport holds the computed analytics over the merged snapshots.
type InsightReport struct {
	SnapshotCount int
	FirstSnapshot SnapshotDate
	LastSnapshot  SnapshotDate
	RoomType      string
	TrackedRooms  int

	Trend     *TrendResult
	TopMovers []TrendRecord

	InsightSnapshot    string
	Correlation        *Correlation
	NeighborhoodPrices map[string]float64
	Hosts              int
	ListingHistogram   []int
}
