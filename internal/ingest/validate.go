package ingest

import (
	"fmt"

	"tcoboard/internal/core"
)

// Plausible bounds for the year column. Anything outside is almost certainly
// a mis-mapped column or a typo, not a real reporting period.
const (
	minYear = 2020
	maxYear = 2030
)

// ValidateRecords runs the data-quality checks over mapped records and
// returns human-readable findings. Row numbers are 1-based data rows (the
// header row is not counted). The records themselves are never modified or
// rejected here; the caller decides whether to proceed with flawed data.
func ValidateRecords(records []core.CostRecord) []string {
	var msgs []string
	for i, r := range records {
		row := i + 1
		if r.Year == 0 {
			msgs = append(msgs, fmt.Sprintf("row %d: missing year", row))
		} else if r.Year < minYear || r.Year > maxYear {
			msgs = append(msgs, fmt.Sprintf("row %d: year %d outside expected range %d-%d", row, r.Year, minYear, maxYear))
		}
		if r.Quarter == "" {
			msgs = append(msgs, fmt.Sprintf("row %d: missing quarter", row))
		}
		if r.TotalIncurredCost < 0 {
			msgs = append(msgs, fmt.Sprintf("row %d: negative total incurred cost (%.2f)", row, r.TotalIncurredCost))
		}
	}
	return msgs
}
