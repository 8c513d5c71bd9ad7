package core

import (
	"math"
	"sort"
)

type (
	// Change is the delta between the current and previous period for one
	// group. Percentage is expressed in the 0-100 range.
	Change struct {
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
	}

	// ComparisonEntry pairs a current-period group with its previous-period
	// counterpart. Previous is nil for keys that only appear in the current
	// period.
	ComparisonEntry struct {
		Key      string           `json:"key"`
		Current  AggregatedGroup  `json:"current"`
		Previous *AggregatedGroup `json:"previous,omitempty"`
		Change   Change           `json:"change"`
	}
)

// NewKeyPercentage is the sentinel percentage assigned to groups with no
// previous-period counterpart.
const NewKeyPercentage = 100

// ComparePeriods partitions rows by the two period predicates, aggregates
// each side along dim, and emits one entry per group of the *current* side,
// sorted descending by |Change.Amount|.
//
// Keys present only in the previous period are not emitted; a caller that
// wants discontinued keys runs the comparison with the predicates swapped.
// Division by a zero previous total yields 0%, not Inf/NaN.
func ComparePeriods(rows []CostRecord, current, previous Predicate, dim Dimension) []ComparisonEntry {
	curRows, prevRows := Partition(rows, current, previous)

	curGroups := AggregateByDimension(curRows, dim)
	prevGroups := AggregateByDimension(prevRows, dim)

	prevByKey := make(map[string]AggregatedGroup, len(prevGroups))
	for _, g := range prevGroups {
		prevByKey[g.Value] = g
	}

	entries := make([]ComparisonEntry, 0, len(curGroups))
	for _, g := range curGroups {
		entry := ComparisonEntry{Key: g.Value, Current: g}
		if prev, ok := prevByKey[g.Value]; ok {
			p := prev
			entry.Previous = &p
			entry.Change.Amount = g.TotalCost - prev.TotalCost
			if prev.TotalCost > 0 {
				entry.Change.Percentage = entry.Change.Amount / prev.TotalCost * 100
			}
		} else {
			entry.Change.Amount = g.TotalCost
			entry.Change.Percentage = NewKeyPercentage
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return math.Abs(entries[i].Change.Amount) > math.Abs(entries[j].Change.Amount)
	})
	return entries
}
