package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// PriceSatisfaction returns the [price, satisfaction] pairs of every reviewed
// listing in snap.
func (s *InsightService) PriceSatisfaction(snap *models.Snapshot) ([]models.PricePoint, error) {
	schema, err := ResolveSchema(snap.Path, snap.Header, FieldPrice, FieldSatisfaction, FieldReviews)
	if err != nil {
		return nil, err
	}

	var points []models.PricePoint
	for _, row := range snap.Rows {
		ok, err := schema.Accept(row, HasReviews())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		price, err := schema.Float(row, FieldPrice)
		if err != nil {
			return nil, err
		}
		satisfaction, err := schema.Float(row, FieldSatisfaction)
		if err != nil {
			return nil, err
		}
		points = append(points, models.PricePoint{Price: price, Satisfaction: satisfaction})
	}
	return points, nil
}

// HostListings maps every host in snap to its room ids, in file order.
func (s *InsightService) HostListings(snap *models.Snapshot) (map[int64][]int64, error) {
	schema, err := ResolveSchema(snap.Path, snap.Header, FieldHostID, FieldRoomID)
	if err != nil {
		return nil, err
	}

	hosts := make(map[int64][]int64)
	for _, row := range snap.Rows {
		if ok, _ := schema.Accept(row); !ok {
			continue
		}
		hostID, err := schema.Int(row, FieldHostID)
		if err != nil {
			return nil, err
		}
		roomID, err := schema.Int(row, FieldRoomID)
		if err != nil {
			return nil, err
		}
		hosts[hostID] = append(hosts[hostID], roomID)
	}
	return hosts, nil
}

// ListingHistogram counts hosts by number of listings: the value at index i
// is the number of hosts with exactly i listings.
func ListingHistogram(hosts map[int64][]int64) []int {
	largest := 0
	for _, rooms := range hosts {
		if len(rooms) > largest {
			largest = len(rooms)
		}
	}

	histogram := make([]int, largest+1)
	for _, rooms := range hosts {
		histogram[len(rooms)]++
	}
	return histogram
}

// NeighborhoodPrices returns the average price per neighborhood of the
// listings in snap with the given room type.
func (s *InsightService) NeighborhoodPrices(snap *models.Snapshot, roomType string) (map[string]float64, error) {
	schema, err := ResolveSchema(snap.Path, snap.Header, FieldRoomType, FieldNeighborhood, FieldPrice)
	if err != nil {
		return nil, err
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, row := range snap.Rows {
		ok, err := schema.Accept(row, RoomTypeIs(roomType))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		price, err := schema.Float(row, FieldPrice)
		if err != nil {
			return nil, err
		}
		n := schema.String(row, FieldNeighborhood)
		sums[n] += price
		counts[n]++
	}

	averages := make(map[string]float64, len(sums))
	for n, sum := range sums {
		averages[n] = sum / float64(counts[n])
	}
	return averages, nil
}

// InsightInput gathers what Generate summarises.
type InsightInput struct {
	Build                *BuildResult
	Trend                *models.TrendResult
	TopMovers            []models.TrendRecord
	RoomType             string
	Snapshot             *models.Snapshot
	NeighborhoodRoomType string
}

// Generate assembles the report. Too few reviewed listings for a correlation
// is logged and leaves Correlation nil; every other failure is returned.
func (s *InsightService) Generate(in InsightInput) (*models.InsightReport, error) {
	report := &models.InsightReport{
		RoomType:           in.RoomType,
		Trend:              in.Trend,
		TopMovers:          in.TopMovers,
		NeighborhoodPrices: make(map[string]float64),
	}

	if in.Build != nil && len(in.Build.Snapshots) > 0 {
		report.SnapshotCount = len(in.Build.Snapshots)
		report.FirstSnapshot = in.Build.Snapshots[0].Date
		report.LastSnapshot = in.Build.Snapshots[len(in.Build.Snapshots)-1].Date
		report.TrackedRooms = len(in.Build.Series)
	}

	if in.Snapshot == nil {
		return report, nil
	}
	report.InsightSnapshot = in.Snapshot.Path

	points, err := s.PriceSatisfaction(in.Snapshot)
	if err != nil {
		return nil, err
	}
	corr, err := Correlation(points)
	switch {
	case errors.Is(err, ErrEmptyInput):
		s.logger.Warn("[insights] correlation skipped: %v", err)
	case err != nil:
		return nil, err
	default:
		report.Correlation = &corr
	}

	hosts, err := s.HostListings(in.Snapshot)
	if err != nil {
		return nil, err
	}
	report.Hosts = len(hosts)
	report.ListingHistogram = ListingHistogram(hosts)

	if report.NeighborhoodPrices, err = s.NeighborhoodPrices(in.Snapshot, in.NeighborhoodRoomType); err != nil {
		return nil, err
	}

	s.logger.Info("[insights] %s: %d reviewed listings, %d hosts, %d neighborhoods",
		in.Snapshot.Path, len(points), len(hosts), len(report.NeighborhoodPrices))
	return report, nil
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📈 RENTAL MARKET PRICE TRENDS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Snapshots merged : \033[1m%s\033[0m (%s → %s)\n",
		humanize.Comma(int64(r.SnapshotCount)), r.FirstSnapshot, r.LastSnapshot)
	fmt.Printf("  Room type        : \033[1m%s\033[0m\n", r.RoomType)
	fmt.Printf("  Rooms tracked    : \033[1m%s\033[0m\n", humanize.Comma(int64(r.TrackedRooms)))
	fmt.Println()

	fmt.Printf("\033[1;33m  Maximum Price Change\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.Trend == nil || r.Trend.Winner == nil {
		fmt.Printf("  No price series available\n")
	} else {
		w := r.Trend.Winner
		if !r.Trend.HasIncrease() {
			fmt.Printf("  \033[33mNo listing increased in price\033[0m; smallest decline shown\n")
		}
		fmt.Printf("  Room %d : \033[1;32m%+.2f%%\033[0m ($%.2f → $%.2f over %d snapshots)\n",
			w.RoomID, w.PercentChange, w.StartPrice, w.EndPrice, w.Observations)
	}
	fmt.Println()

	if len(r.TopMovers) > 0 {
		fmt.Printf("\033[1;33m  Top %d Movers\033[0m\n", len(r.TopMovers))
		fmt.Printf("  %s\n", thin)
		for i, m := range r.TopMovers {
			fmt.Printf("  \033[1m%d.\033[0m room %-12d %8.2f → %-8.2f \033[1;32m%+.2f%%\033[0m\n",
				i+1, m.RoomID, m.StartPrice, m.EndPrice, m.PercentChange)
		}
		fmt.Println()
	}

	if r.InsightSnapshot == "" {
		fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	fmt.Printf("\033[1;33m  Price vs Satisfaction (%s)\033[0m\n", r.InsightSnapshot)
	fmt.Printf("  %s\n", thin)
	if r.Correlation == nil {
		fmt.Printf("  Not enough reviewed listings\n")
	} else {
		fmt.Printf("  Spearman ρ : \033[1m%.4f\033[0m  p-value: %s  (n=%s)\n",
			r.Correlation.Coefficient, formatPValue(r.Correlation.PValue),
			humanize.Comma(int64(r.Correlation.Samples)))
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Listings per Host\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Hosts: %s\n", humanize.Comma(int64(r.Hosts)))
	for n := 1; n < len(r.ListingHistogram); n++ {
		if r.ListingHistogram[n] == 0 {
			continue
		}
		bar := strings.Repeat("█", scaleBar(r.ListingHistogram[n], r.ListingHistogram, 30))
		fmt.Printf("  %3d listing(s) %s (%s)\n", n, bar, humanize.Comma(int64(r.ListingHistogram[n])))
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Average Price by Neighborhood\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.NeighborhoodPrices) == 0 {
		fmt.Printf("  No neighborhood data\n")
	} else {
		type hoodPrice struct {
			name  string
			price float64
		}
		var hoods []hoodPrice
		for n, p := range r.NeighborhoodPrices {
			hoods = append(hoods, hoodPrice{n, p})
		}
		sort.Slice(hoods, func(i, j int) bool {
			if hoods[i].price != hoods[j].price {
				return hoods[i].price > hoods[j].price
			}
			return hoods[i].name < hoods[j].name
		})
		for _, h := range hoods {
			fmt.Printf("  %-36s \033[1;32m$%.2f\033[0m\n", truncate(h.name, 34), round2(h.price))
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func scaleBar(v int, all []int, width int) int {
	peak := 0
	for _, x := range all {
		if x > peak {
			peak = x
		}
	}
	if peak == 0 {
		return 0
	}
	n := int(math.Ceil(float64(v) * float64(width) / float64(peak)))
	if n < 1 {
		n = 1
	}
	return n
}

func formatPValue(p float64) string {
	if math.IsNaN(p) {
		return "n/a"
	}
	if p < 1e-4 {
		return fmt.Sprintf("%.2e", p)
	}
	return fmt.Sprintf("%.4f", p)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
