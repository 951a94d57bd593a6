package services

import (
	"sort"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// TrendExtractor derives percent-change trends from completed price series.
type TrendExtractor struct {
	logger *utils.Logger
}

// NewTrendExtractor creates a TrendExtractor with the given logger.
func NewTrendExtractor(logger *utils.Logger) *TrendExtractor {
	return &TrendExtractor{logger: logger}
}

// Change computes the percent change from the first to the last price of s.
func (t *TrendExtractor) Change(s *models.PriceSeries) (models.TrendRecord, error) {
	start, end := s.First(), s.Last()
	if start == 0 {
		return models.TrendRecord{}, &DivisionByZeroError{RoomID: s.RoomID}
	}

	rec := models.TrendRecord{
		RoomID:        s.RoomID,
		PercentChange: (end - start) / start * 100,
		StartPrice:    start,
		EndPrice:      end,
		Observations:  s.Len(),
	}
	if len(s.Dates) > 0 {
		rec.FirstSeen = s.Dates[0]
		rec.LastSeen = s.Dates[len(s.Dates)-1]
	}
	return rec, nil
}

// MaxChange returns the room with the largest percent change. Rooms are
// visited in ascending id order and only a strictly larger change replaces
// the current winner, so ties go to the lowest room id.
func (t *TrendExtractor) MaxChange(set models.SeriesSet) (*models.TrendResult, error) {
	result := &models.TrendResult{}

	for _, id := range set.RoomIDs() {
		s := set[id]
		if s == nil || s.Len() == 0 {
			continue
		}
		rec, err := t.Change(s)
		if err != nil {
			return nil, err
		}
		result.Evaluated++

		if result.Winner == nil || rec.PercentChange > result.Winner.PercentChange {
			r := rec
			result.Winner = &r
		}
	}

	if result.Winner == nil {
		return nil, &EmptyInputError{Reason: "no non-empty price series"}
	}

	if !result.HasIncrease() {
		t.logger.Warn("[trend] no room increased in price across %d series", result.Evaluated)
	}
	t.logger.Debug("[trend] room %d leads with %.2f%% (%.2f -> %.2f)",
		result.Winner.RoomID, result.Winner.PercentChange, result.Winner.StartPrice, result.Winner.EndPrice)
	return result, nil
}

// Rank returns the k rooms with the largest percent change, largest first,
// ties broken by ascending room id. k <= 0 returns every room.
func (t *TrendExtractor) Rank(set models.SeriesSet, k int) ([]models.TrendRecord, error) {
	records := make([]models.TrendRecord, 0, len(set))
	for _, id := range set.RoomIDs() {
		s := set[id]
		if s == nil || s.Len() == 0 {
			continue
		}
		rec, err := t.Change(s)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PercentChange > records[j].PercentChange
	})

	if k > 0 && len(records) > k {
		records = records[:k]
	}
	return records, nil
}
