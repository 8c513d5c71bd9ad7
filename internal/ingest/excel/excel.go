// Package excel reads uploaded .xlsx workbooks as a row source for the
// cost-allocation ingest pipeline.
package excel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"tcoboard/internal/ingest"
)

// Reader exposes one worksheet of an .xlsx document as raw header/data rows.
// The zero sheet name means "first sheet in the workbook".
type Reader struct {
	data  []byte
	sheet string
}

var _ ingest.RowSource = (*Reader)(nil)

// NewReader buffers the workbook from r. Sheet selects the worksheet by
// name; pass "" for the first one.
func NewReader(r io.Reader, sheet string) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty workbook")
	}
	return &Reader{data: data, sheet: sheet}, nil
}

// OpenFile opens a workbook stored on disk (used by the import worker).
func OpenFile(path string, sheet string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook file: %w", err)
	}
	defer f.Close()
	return NewReader(f, sheet)
}

// ReadRows implements ingest.RowSource. Row 1 is the header row; everything
// below it is data.
func (r *Reader) ReadRows(ctx context.Context) ([]string, [][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	wb, err := excelize.OpenReader(bytes.NewReader(r.data))
	if err != nil {
		return nil, nil, fmt.Errorf("parse workbook: %w", err)
	}
	defer wb.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}
