package analytics

import (
	"math"
	"sort"
	"strings"
)

// SortKey names one of the dashboard's sortable columns.
type SortKey string

const (
	SortNone       SortKey = ""
	SortName       SortKey = "name"
	SortValue      SortKey = "value"
	SortPrediction SortKey = "prediction"
	SortSum        SortKey = "sum"
	SortSumPercent SortKey = "sum-percent"
)

// Sort directions as persisted: 1 ascending, -1 descending, 0 unsorted.
const (
	Ascending  = 1
	Descending = -1
)

// SortState is the single dashboard-wide sort value: at most one key is
// active, with a direction. The zero value means unsorted (original
// registry order).
type SortState struct {
	Key       SortKey `json:"type"`
	Direction int     `json:"direction"`
}

// Active reports whether any sort is in effect.
func (s SortState) Active() bool {
	return s.Key != SortNone && s.Direction != 0
}

// Activate is the one transition function over the sort state machine.
// Repeated activation of the same key cycles unsorted → ascending →
// descending → unsorted; activating a different key abandons the old one
// entirely, so only a single key is ever active.
func (s SortState) Activate(key SortKey) SortState {
	if key == SortNone {
		return SortState{}
	}
	if s.Key != key {
		return SortState{Key: key, Direction: Ascending}
	}
	switch s.Direction {
	case Ascending:
		return SortState{Key: key, Direction: Descending}
	case Descending:
		return SortState{}
	default:
		return SortState{Key: key, Direction: Ascending}
	}
}

// ValidSortKey reports whether raw names a sortable column.
func ValidSortKey(raw string) bool {
	switch SortKey(raw) {
	case SortName, SortValue, SortPrediction, SortSum, SortSumPercent:
		return true
	}
	return false
}

// Missing-data sentinels for the numeric comparators: anything absent sorts
// below everything present, keeping the order total.
const (
	noSelectionSort = -1.0
	noAggregateSort = -1.0
)

// SortBlocks reorders blocks in place according to state. Unsorted restores
// the original registry order. Sorting is stable, so ties keep their
// previous relative order.
func SortBlocks(blocks []Block, state SortState) {
	if !state.Active() {
		sort.SliceStable(blocks, func(i, j int) bool {
			return blocks[i].Position < blocks[j].Position
		})
		return
	}

	asc := state.Direction == Ascending
	if state.Key == SortName {
		sort.SliceStable(blocks, func(i, j int) bool {
			a := strings.ToLower(blocks[i].Title)
			b := strings.ToLower(blocks[j].Title)
			if asc {
				return a < b
			}
			return a > b
		})
		return
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		a := numericSortValue(blocks[i], state.Key)
		b := numericSortValue(blocks[j], state.Key)
		if asc {
			return a < b
		}
		return a > b
	})
}

// numericSortValue projects a block onto the active numeric sort column.
func numericSortValue(b Block, key SortKey) float64 {
	switch key {
	case SortValue:
		if b.Selected == nil {
			return noSelectionSort
		}
		return float64(*b.Selected)
	case SortPrediction:
		if b.Prediction == nil {
			return math.Inf(-1)
		}
		return *b.Prediction
	case SortSum:
		if !b.Aggregate.HasData {
			return noAggregateSort
		}
		return b.Aggregate.Sum
	case SortSumPercent:
		if !b.Aggregate.HasData {
			return noAggregateSort
		}
		return float64(b.Aggregate.Percent)
	}
	return 0
}
