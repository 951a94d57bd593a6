package models

import "sort"

// PriceSeries is the chronologically ordered price history of one room.
// Dates[i] is the snapshot in which Prices[i] was observed.
type PriceSeries struct {
	RoomID int64
	Dates  []SnapshotDate
	Prices []float64
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.Prices) }

// First returns the earliest observed price.
func (s *PriceSeries) First() float64 { return s.Prices[0] }

// Last returns the most recent observed price.
func (s *PriceSeries) Last() float64 { return s.Prices[len(s.Prices)-1] }

// SeriesSet maps room id to its price series.
type SeriesSet map[int64]*PriceSeries

// RoomIDs returns the room ids in ascending order.
func (s SeriesSet) RoomIDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TrendRecord summarises the change between the first and last price of a series.
type TrendRecord struct {
	RoomID        int64
	PercentChange float64
	StartPrice    float64
	EndPrice      float64
	FirstSeen     SnapshotDate
	LastSeen      SnapshotDate
	Observations  int
}

// TrendResult is the outcome of a maximum-change search.
// Winner is the room with the largest percent change, which may be zero or
// negative when no room rose in price.
type TrendResult struct {
	Winner    *TrendRecord
	Evaluated int
}

// HasIncrease reports whether any room rose in price.
func (r *TrendResult) HasIncrease() bool {
	return r != nil && r.Winner != nil && r.Winner.PercentChange > 0
}
