package excel

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"tcoboard/internal/ingest"
)

// buildWorkbook writes a small in-memory .xlsx with the given rows.
func buildWorkbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()

	if sheet != "Sheet1" {
		if _, err := wb.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestReadRowsFirstSheet(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]any{
		{"Year", "Quarter", "Warehouse", "Total Incurred Cost"},
		{2024, "Q1", "Riyadh", 1500.5},
		{2024, "Q2", "Jeddah", 300},
	})

	r, err := NewReader(buf, "")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	headers, rows, err := r.ReadRows(context.Background())
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(headers) != 4 || headers[0] != "Year" {
		t.Errorf("headers = %v", headers)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(rows))
	}
	if rows[0][2] != "Riyadh" {
		t.Errorf("row cell = %q, want Riyadh", rows[0][2])
	}
}

func TestReadRowsThroughIngestPipeline(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]any{
		{"Year", "Quarter", "Warehouse", "OPEX/CAPEX", "Total Incurred Cost"},
		{2024, "Q1", "Riyadh", "OPEX", 100},
		{2024, "Q1", "Jeddah", "CAPEX", 50},
	})

	r, err := NewReader(buf, "")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	records, warnings, err := ingest.Load(context.Background(), r)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Quarter != "q1" || records[0].Warehouse != "Riyadh" || records[0].TotalIncurredCost != 100 {
		t.Errorf("first record mis-mapped: %+v", records[0])
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestNewReaderRejectsEmptyInput(t *testing.T) {
	if _, err := NewReader(bytes.NewReader(nil), ""); err == nil {
		t.Fatal("expected error for empty workbook")
	}
}

func TestReadRowsMissingSheet(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]any{{"Year"}})
	r, err := NewReader(buf, "NoSuchSheet")
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, _, err := r.ReadRows(context.Background()); err == nil {
		t.Fatal("expected error for missing sheet")
	}
}
