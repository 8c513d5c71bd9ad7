package core

import (
	"fmt"
	"testing"
)

func TestBuildDashboardMetricsScenario(t *testing.T) {
	rows := []CostRecord{
		{Warehouse: "A", TotalIncurredCost: 100, OpexCapex: "OpEx"},
		{Warehouse: "B", TotalIncurredCost: 50, OpexCapex: "CapEx"},
	}

	m := BuildDashboardMetrics(rows)

	if !almostEqual(m.TotalCost, 150) {
		t.Errorf("totalCost = %v, want 150", m.TotalCost)
	}
	if !almostEqual(m.TotalOpex, 100) {
		t.Errorf("totalOpex = %v, want 100", m.TotalOpex)
	}
	if !almostEqual(m.TotalCapex, 50) {
		t.Errorf("totalCapex = %v, want 50", m.TotalCapex)
	}
	if len(m.CostByWarehouse) != 2 {
		t.Fatalf("costByWarehouse has %d groups, want 2", len(m.CostByWarehouse))
	}
	if m.CostByWarehouse[0].Value != "A" || !almostEqual(m.CostByWarehouse[0].TotalCost, 100) {
		t.Errorf("first warehouse group = %q/%v, want A/100", m.CostByWarehouse[0].Value, m.CostByWarehouse[0].TotalCost)
	}
	if m.CostByWarehouse[1].Value != "B" || !almostEqual(m.CostByWarehouse[1].TotalCost, 50) {
		t.Errorf("second warehouse group = %q/%v, want B/50", m.CostByWarehouse[1].Value, m.CostByWarehouse[1].TotalCost)
	}
}

func TestBuildDashboardMetricsComposites(t *testing.T) {
	rows := []CostRecord{
		{TotalPharmacyDistLM: 10, ValueDistribution: 20, ValueLastMile: 30, ValueProceed3PLWH: 1, ValueProceed3PLTRS: 2},
		{TotalPharmacyDistLM: 5, ValueDistribution: 5, ValueLastMile: 5, ValueProceed3PLWH: 3, ValueProceed3PLTRS: 4},
	}

	m := BuildDashboardMetrics(rows)
	if !almostEqual(m.DistributionTotal, 75) {
		t.Errorf("distributionTotal = %v, want 75", m.DistributionTotal)
	}
	if !almostEqual(m.Proceed3PLTotal, 10) {
		t.Errorf("proceed3PLTotal = %v, want 10", m.Proceed3PLTotal)
	}
}

func TestBuildDashboardMetricsUnclassifiedRows(t *testing.T) {
	rows := []CostRecord{
		{TotalIncurredCost: 100, OpexCapex: "Unknown"},
	}
	m := BuildDashboardMetrics(rows)
	if !almostEqual(m.TotalCost, 100) {
		t.Errorf("totalCost = %v, want 100", m.TotalCost)
	}
	if m.TotalOpex != 0 || m.TotalCapex != 0 {
		t.Errorf("unclassified row leaked into opex/capex: %v/%v", m.TotalOpex, m.TotalCapex)
	}
}

func TestBuildDashboardMetricsTruncation(t *testing.T) {
	var rows []CostRecord
	for i := 0; i < 15; i++ {
		rows = append(rows, CostRecord{
			Warehouse:         fmt.Sprintf("WH-%02d", i),
			GLAccountName:     fmt.Sprintf("GL-%02d", i),
			TotalIncurredCost: float64(100 - i),
		})
	}

	m := BuildDashboardMetrics(rows)
	if len(m.CostByWarehouse) != 10 {
		t.Errorf("costByWarehouse has %d entries, want 10", len(m.CostByWarehouse))
	}
	// The 10 kept must be the most expensive ones.
	if m.CostByWarehouse[0].Value != "WH-00" || m.CostByWarehouse[9].Value != "WH-09" {
		t.Errorf("truncation kept wrong groups: first=%q last=%q", m.CostByWarehouse[0].Value, m.CostByWarehouse[9].Value)
	}
	if len(m.CostByGLAccount) != 15 {
		t.Errorf("costByGLAccount has %d entries, want all 15", len(m.CostByGLAccount))
	}
}

func TestBuildDashboardMetricsTopExpensesFullSorted(t *testing.T) {
	rows := []CostRecord{
		{Warehouse: "A", TotalIncurredCost: 10},
		{Warehouse: "B", TotalIncurredCost: 99},
		{Warehouse: "C", TotalIncurredCost: 50},
	}

	m := BuildDashboardMetrics(rows)
	if len(m.TopExpenses) != 3 {
		t.Fatalf("topExpenses has %d rows, want all 3", len(m.TopExpenses))
	}
	if m.TopExpenses[0].Warehouse != "B" || m.TopExpenses[2].Warehouse != "A" {
		t.Errorf("topExpenses not sorted descending: %v", m.TopExpenses)
	}
	// The input sequence stays untouched.
	if rows[0].Warehouse != "A" {
		t.Error("input rows were reordered")
	}
}

func TestBuildDashboardMetricsEmptyInput(t *testing.T) {
	m := BuildDashboardMetrics(nil)
	if m.TotalCost != 0 || m.TotalOpex != 0 || m.TotalCapex != 0 {
		t.Errorf("non-zero totals for empty input: %+v", m)
	}
	if len(m.CostByQuarter) != 0 || len(m.CostByWarehouse) != 0 || len(m.TopExpenses) != 0 {
		t.Error("non-empty group lists for empty input")
	}
}

func TestCollectFilterOptions(t *testing.T) {
	rows := []CostRecord{
		{Year: 2025, Quarter: "q2", Warehouse: "B", Type: "WH", CostType: "Constant", OpexCapex: "OPEX"},
		{Year: 2024, Quarter: "q1", Warehouse: "A", CostType: "Variable", OpexCapex: "CAPEX"},
		{Year: 2024, Quarter: "q1", Warehouse: "A"}, // duplicates and empties ignored
	}

	opts := CollectFilterOptions(rows)
	if len(opts.Years) != 2 || opts.Years[0] != 2024 || opts.Years[1] != 2025 {
		t.Errorf("years = %v, want [2024 2025]", opts.Years)
	}
	if len(opts.Quarters) != 2 || opts.Quarters[0] != "q1" {
		t.Errorf("quarters = %v, want [q1 q2]", opts.Quarters)
	}
	if len(opts.Warehouses) != 2 || opts.Warehouses[0] != "A" {
		t.Errorf("warehouses = %v, want [A B]", opts.Warehouses)
	}
	if len(opts.Types) != 1 || opts.Types[0] != "WH" {
		t.Errorf("types = %v, want [WH]", opts.Types)
	}
	if len(opts.CostTypes) != 2 {
		t.Errorf("costTypes = %v, want 2 entries", opts.CostTypes)
	}
}
