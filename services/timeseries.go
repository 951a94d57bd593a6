package services

import (
	"context"
	"fmt"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// SeriesBuilder accumulates per-room price series from snapshots presented
// in chronological order. It owns the series until Series is called.
type SeriesBuilder struct {
	logger *utils.Logger
	series models.SeriesSet
	sealed bool
}

// NewSeriesBuilder creates an empty SeriesBuilder.
func NewSeriesBuilder(logger *utils.Logger) *SeriesBuilder {
	return &SeriesBuilder{logger: logger, series: make(models.SeriesSet)}
}

// Observe records price for roomID in the snapshot dated date, creating the
// series on first sight. A second observation for the same room and date is
// ignored and reported as false, so the first row of a snapshot wins.
func (b *SeriesBuilder) Observe(date models.SnapshotDate, roomID int64, price float64) (bool, error) {
	if b.sealed {
		return false, ErrSeriesSealed
	}

	s, ok := b.series[roomID]
	if !ok {
		b.series[roomID] = &models.PriceSeries{
			RoomID: roomID,
			Dates:  []models.SnapshotDate{date},
			Prices: []float64{price},
		}
		return true, nil
	}

	last := s.Dates[len(s.Dates)-1]
	switch {
	case last == date:
		return false, nil
	case date.Before(last):
		return false, fmt.Errorf("room %d: %s after %s: %w", roomID, date, last, ErrOutOfOrder)
	}

	s.Dates = append(s.Dates, date)
	s.Prices = append(s.Prices, price)
	return true, nil
}

// SnapshotStats counts what happened to the rows of one snapshot.
type SnapshotStats struct {
	Rows       int
	Malformed  int
	Filtered   int
	Appended   int
	Duplicates int
}

// AddSnapshot appends the price of every row of snap whose room type equals
// roomType. Rows with the wrong column count are skipped; a missing column
// or an unparseable room id or price aborts.
func (b *SeriesBuilder) AddSnapshot(snap *models.Snapshot, roomType string) (SnapshotStats, error) {
	stats := SnapshotStats{Rows: len(snap.Rows)}

	schema, err := ResolveSchema(snap.Path, snap.Header, CoreFields...)
	if err != nil {
		return stats, err
	}

	matchType := RoomTypeIs(roomType)
	for _, row := range snap.Rows {
		if len(row.Fields) != schema.HeaderLen() {
			stats.Malformed++
			continue
		}
		ok, err := schema.Accept(row, matchType)
		if err != nil {
			return stats, err
		}
		if !ok {
			stats.Filtered++
			continue
		}

		roomID, err := schema.Int(row, FieldRoomID)
		if err != nil {
			return stats, err
		}
		price, err := schema.Float(row, FieldPrice)
		if err != nil {
			return stats, err
		}

		added, err := b.Observe(snap.Date, roomID, price)
		if err != nil {
			return stats, err
		}
		if !added {
			stats.Duplicates++
			b.logger.Debug("[series] %s:%d duplicate room %d ignored", snap.Path, row.Line, roomID)
			continue
		}
		stats.Appended++
	}

	if stats.Duplicates > 0 {
		b.logger.Warn("[series] %s: %d duplicate room rows ignored (first occurrence kept)",
			snap.Path, stats.Duplicates)
	}
	return stats, nil
}

// Series seals the builder and returns the accumulated series. Later calls
// to Observe fail with ErrSeriesSealed.
func (b *SeriesBuilder) Series() models.SeriesSet {
	b.sealed = true
	return b.series
}

// SnapshotLoader reads one snapshot file in full.
type SnapshotLoader interface {
	Load(path string) (*models.Snapshot, error)
}

// SnapshotSink receives the typed rows of every snapshot as it is merged.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, runID string, date models.SnapshotDate, listings []models.Listing) error
}

// BuildResult is the output of a multi-snapshot merge.
type BuildResult struct {
	Snapshots []DatedSnapshot
	Series    models.SeriesSet
}

// SeriesService merges snapshot files into per-room price series.
type SeriesService struct {
	loader SnapshotLoader
	logger *utils.Logger
	sink   SnapshotSink
	runID  string
}

// NewSeriesService creates a SeriesService reading files through loader.
func NewSeriesService(loader SnapshotLoader, logger *utils.Logger) *SeriesService {
	return &SeriesService{loader: loader, logger: logger}
}

// WithSink makes Build hand every loaded snapshot's listings to sink, tagged
// with runID.
func (s *SeriesService) WithSink(sink SnapshotSink, runID string) *SeriesService {
	s.sink = sink
	s.runID = runID
	return s
}

// Build orders paths by embedded date, then loads and merges them one at a
// time, oldest first. Any failure aborts the whole merge.
func (s *SeriesService) Build(ctx context.Context, paths []string, roomType string) (*BuildResult, error) {
	if len(paths) == 0 {
		return nil, &EmptyInputError{Reason: "no snapshot files"}
	}

	ordered, err := SortSnapshots(paths)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[chronology] %d snapshots from %s to %s",
		len(ordered), ordered[0].Date, ordered[len(ordered)-1].Date)

	builder := NewSeriesBuilder(s.logger)
	for _, ds := range ordered {
		snap, err := s.loader.Load(ds.Name)
		if err != nil {
			return nil, err
		}
		snap.Date = ds.Date

		stats, err := builder.AddSnapshot(snap, roomType)
		if err != nil {
			return nil, err
		}
		s.logger.Info("[series] %s (%s): %d rows, %d appended, %d malformed, %d other room types",
			ds.Name, ds.Date, stats.Rows, stats.Appended, stats.Malformed, stats.Filtered)

		if s.sink != nil {
			if err := s.archive(ctx, snap); err != nil {
				return nil, err
			}
		}
	}

	series := builder.Series()
	if len(series) == 0 {
		return nil, &EmptyInputError{
			Reason: fmt.Sprintf("no %q listings in %d snapshots", roomType, len(ordered)),
		}
	}

	return &BuildResult{Snapshots: ordered, Series: series}, nil
}

func (s *SeriesService) archive(ctx context.Context, snap *models.Snapshot) error {
	schema, err := ResolveSchema(snap.Path, snap.Header, CoreFields...)
	if err != nil {
		return err
	}

	seen := utils.NewIDSet()
	listings := make([]models.Listing, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		if ok, _ := schema.Accept(row); !ok {
			continue
		}
		l, err := schema.ExtractListing(row)
		if err != nil {
			return err
		}
		if !seen.Add(l.RoomID) {
			continue
		}
		listings = append(listings, l)
	}

	if err := s.sink.SaveSnapshot(ctx, s.runID, snap.Date, listings); err != nil {
		return fmt.Errorf("archive %s: %w", snap.Path, err)
	}
	s.logger.Debug("[store] archived %d distinct rooms from %d rows of %s", seen.Size(), len(snap.Rows), snap.Date)
	return nil
}
