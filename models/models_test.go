package models

import (
	"testing"
	"time"
)

func TestSnapshotDateOrdering(t *testing.T) {
	a := SnapshotDate{Year: 2016, Month: time.October, Day: 15}
	b := SnapshotDate{Year: 2016, Month: time.December, Day: 1}

	if a.Key() != 20161015 {
		t.Errorf("Key: got %d", a.Key())
	}
	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Error("Before reports wrong order")
	}
	if !a.Time().Equal(time.Date(2016, time.October, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Time: got %v", a.Time())
	}
}

func TestSeriesSetRoomIDsSorted(t *testing.T) {
	set := SeriesSet{30: {RoomID: 30}, 2: {RoomID: 2}, 11: {RoomID: 11}}
	ids := set.RoomIDs()
	want := []int64{2, 11, 30}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("RoomIDs[%d] = %d; want %d", i, ids[i], want[i])
		}
	}
}

func TestTrendResultHasIncrease(t *testing.T) {
	var nilResult *TrendResult
	if nilResult.HasIncrease() {
		t.Error("nil result should not report an increase")
	}
	if (&TrendResult{Winner: &TrendRecord{PercentChange: 0}}).HasIncrease() {
		t.Error("zero change is not an increase")
	}
	if !(&TrendResult{Winner: &TrendRecord{PercentChange: 0.5}}).HasIncrease() {
		t.Error("positive change should be an increase")
	}
}
