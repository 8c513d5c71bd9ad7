package ingest

import (
	"context"
	"fmt"

	"tcoboard/internal/core"
)

// RowSource delivers raw spreadsheet content: a header row plus data rows of
// stringified cells. Implementations exist for uploaded .xlsx files and for
// a Google Sheets range.
type RowSource interface {
	ReadRows(ctx context.Context) (headers []string, rows [][]string, err error)
}

// Load reads everything from src and maps it into cost records. Warnings are
// data-quality findings (range validation plus unmapped columns); they never
// abort the load. The caller decides whether to proceed.
func Load(ctx context.Context, src RowSource) ([]core.CostRecord, []string, error) {
	headers, rows, err := src.ReadRows(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}

	records, warnings := ParseRecords(headers, rows)
	warnings = append(warnings, ValidateRecords(records)...)
	return records, warnings, nil
}
