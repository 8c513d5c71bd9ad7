package ingest

import (
	"strings"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"GL Account No", "glaccountno"},
		{"gl_account_no", "glaccountno"},
		{"  Total Incurred Cost ", "totalincurredcost"},
		{"OPEX/CAPEX", "opexcapex"},
		{"Value WH (SAR)", "valuewh"},
		{"TCO Model Categories", "tcomodelcategories"},
		{"Opex-Capex", "opexcapex"},
	}
	for _, tt := range tests {
		if got := normalizeHeader(tt.in); got != tt.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRecordsMapsTolerantHeaders(t *testing.T) {
	headers := []string{"Year", "QUARTER", "ware house", "Cost Type", "OPEX/CAPEX", "Total Incured Cost", "Value WH"}
	rows := [][]string{
		{"2024", "Q1", "Riyadh", "Constant", "OPEX", "1,234.50", "200"},
	}

	records, warnings := ParseRecords(headers, rows)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Year != 2024 || r.Quarter != "q1" {
		t.Errorf("period = %d/%q, want 2024/q1", r.Year, r.Quarter)
	}
	if r.Warehouse != "Riyadh" || r.CostType != "Constant" || r.OpexCapex != "OPEX" {
		t.Errorf("dimensions mis-mapped: %+v", r)
	}
	if r.TotalIncurredCost != 1234.5 {
		t.Errorf("totalIncurredCost = %v, want 1234.5 (typo'd header, comma separator)", r.TotalIncurredCost)
	}
	if r.ValueWH != 200 {
		t.Errorf("valueWH = %v, want 200", r.ValueWH)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestParseRecordsReportsUnrecognizedColumns(t *testing.T) {
	headers := []string{"Year", "Quarter", "Mystery Column"}
	rows := [][]string{{"2024", "q2", "x"}}

	_, warnings := ParseRecords(headers, rows)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Mystery Column") {
		t.Errorf("expected unrecognized-column warning, got %v", warnings)
	}
}

func TestParseRecordsSkipsBlankRowsAndShortRows(t *testing.T) {
	headers := []string{"Year", "Quarter", "Warehouse", "Total Incurred Cost"}
	rows := [][]string{
		{"2024", "q1", "A", "10"},
		{"", "", "", ""},
		{"2024", "q1"}, // short row: missing cells read as empty
	}

	records, _ := ParseRecords(headers, rows)
	if len(records) != 2 {
		t.Fatalf("expected 2 records (blank row skipped), got %d", len(records))
	}
	if records[1].Warehouse != "" || records[1].TotalIncurredCost != 0 {
		t.Errorf("short row should coerce missing cells: %+v", records[1])
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"123.45", 123.45},
		{"1,234,567.8", 1234567.8},
		{"", 0},
		{"-", 0},
		{"n/a", 0},
		{"(500)", -500},
		{" 42 ", 42},
	}
	for _, tt := range tests {
		if got := ParseNumber(tt.in); got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
