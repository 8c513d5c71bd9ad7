package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateByDimensionSumsMeasures(t *testing.T) {
	rows := []CostRecord{
		{Warehouse: "Riyadh", TotalIncurredCost: 100, ValueWH: 40, ValueTRS: 10, TotalPharmacyDistLM: 5},
		{Warehouse: "Riyadh", TotalIncurredCost: 50, ValueWH: 20, ValueLastMile: 7},
		{Warehouse: "Jeddah", TotalIncurredCost: 30, ValueProceed3PLWH: 3, ValueProceed3PLTRS: 4},
	}

	groups := AggregateByDimension(rows, DimWarehouse)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	riyadh := groups[0]
	if riyadh.Value != "Riyadh" {
		t.Fatalf("expected Riyadh first (highest cost), got %q", riyadh.Value)
	}
	if !almostEqual(riyadh.TotalCost, 150) {
		t.Errorf("Riyadh totalCost = %v, want 150", riyadh.TotalCost)
	}
	if !almostEqual(riyadh.WarehouseCost, 60) {
		t.Errorf("Riyadh warehouseCost = %v, want 60", riyadh.WarehouseCost)
	}
	if !almostEqual(riyadh.PharmaciesCost, 5) {
		t.Errorf("Riyadh pharmaciesCost = %v, want 5", riyadh.PharmaciesCost)
	}
	if !almostEqual(riyadh.LastMileCost, 7) {
		t.Errorf("Riyadh lastMileCost = %v, want 7", riyadh.LastMileCost)
	}
	if riyadh.RowCount != 2 {
		t.Errorf("Riyadh rowCount = %d, want 2", riyadh.RowCount)
	}

	jeddah := groups[1]
	if !almostEqual(jeddah.Proceed3PLWHCost, 3) || !almostEqual(jeddah.Proceed3PLTRSCost, 4) {
		t.Errorf("Jeddah 3PL sums = %v/%v, want 3/4", jeddah.Proceed3PLWHCost, jeddah.Proceed3PLTRSCost)
	}
}

func TestAggregateSumAndRowCountInvariants(t *testing.T) {
	rows := []CostRecord{
		{Warehouse: "A", TotalIncurredCost: 10},
		{Warehouse: "B", TotalIncurredCost: 20},
		{Warehouse: "", TotalIncurredCost: 30}, // lands in "undefined"
		{Warehouse: "A", TotalIncurredCost: 40},
	}

	groups := AggregateByDimension(rows, DimWarehouse)

	var totalCost float64
	var rowCount int
	for _, g := range groups {
		totalCost += g.TotalCost
		rowCount += g.RowCount
	}
	if !almostEqual(totalCost, 100) {
		t.Errorf("sum of group totals = %v, want 100", totalCost)
	}
	if rowCount != len(rows) {
		t.Errorf("sum of rowCounts = %d, want %d", rowCount, len(rows))
	}

	found := false
	for _, g := range groups {
		if g.Value == UndefinedKey {
			found = true
			if !almostEqual(g.TotalCost, 30) {
				t.Errorf("undefined group totalCost = %v, want 30", g.TotalCost)
			}
		}
	}
	if !found {
		t.Error("expected an \"undefined\" group for the empty warehouse")
	}
}

func TestAggregateSortDescendingStable(t *testing.T) {
	rows := []CostRecord{
		{Warehouse: "low", TotalIncurredCost: 1},
		{Warehouse: "tieA", TotalIncurredCost: 50},
		{Warehouse: "tieB", TotalIncurredCost: 50},
		{Warehouse: "high", TotalIncurredCost: 100},
	}

	groups := AggregateByDimension(rows, DimWarehouse)
	for i := 1; i < len(groups); i++ {
		if groups[i].TotalCost > groups[i-1].TotalCost {
			t.Fatalf("groups not sorted descending at %d: %v > %v", i, groups[i].TotalCost, groups[i-1].TotalCost)
		}
	}
	// tieA was seen before tieB; stable sort keeps that order.
	if groups[1].Value != "tieA" || groups[2].Value != "tieB" {
		t.Errorf("tie order = %q,%q, want tieA,tieB", groups[1].Value, groups[2].Value)
	}
}

func TestAggregateOpexCapexBuckets(t *testing.T) {
	rows := []CostRecord{
		{Warehouse: "A", OpexCapex: "opex", TotalIncurredCost: 10},
		{Warehouse: "A", OpexCapex: "OPEX", TotalIncurredCost: 20},
		{Warehouse: "A", OpexCapex: "OpEx", TotalIncurredCost: 30},
		{Warehouse: "A", OpexCapex: "CapEx", TotalIncurredCost: 40},
		{Warehouse: "A", OpexCapex: "Unknown", TotalIncurredCost: 50},
		{Warehouse: "A", OpexCapex: "", TotalIncurredCost: 60},
	}

	groups := AggregateByDimension(rows, DimWarehouse)
	g := groups[0]
	if !almostEqual(g.OpexAmount, 60) {
		t.Errorf("opexAmount = %v, want 60", g.OpexAmount)
	}
	if !almostEqual(g.CapexAmount, 40) {
		t.Errorf("capexAmount = %v, want 40", g.CapexAmount)
	}
	// Unclassified rows still count toward the plain total.
	if !almostEqual(g.TotalCost, 210) {
		t.Errorf("totalCost = %v, want 210", g.TotalCost)
	}
}

func TestAggregateConstantVariableExactMatch(t *testing.T) {
	rows := []CostRecord{
		{Warehouse: "A", CostType: "Constant", TotalIncurredCost: 10},
		{Warehouse: "A", CostType: "Variable", TotalIncurredCost: 20},
		{Warehouse: "A", CostType: "constant", TotalIncurredCost: 40}, // case-sensitive: no bucket
		{Warehouse: "A", CostType: "Mixed", TotalIncurredCost: 80},
	}

	g := AggregateByDimension(rows, DimWarehouse)[0]
	if !almostEqual(g.ConstantCost, 10) {
		t.Errorf("constantCost = %v, want 10", g.ConstantCost)
	}
	if !almostEqual(g.VariableCost, 20) {
		t.Errorf("variableCost = %v, want 20", g.VariableCost)
	}
}

func TestAggregateByQuarterOrdering(t *testing.T) {
	rows := []CostRecord{
		{Quarter: "q3", TotalIncurredCost: 500},
		{Quarter: "q1", TotalIncurredCost: 10},
		{Quarter: "q4", TotalIncurredCost: 300},
		{Quarter: "q2", TotalIncurredCost: 900},
	}

	groups := AggregateByQuarter(rows)
	want := []string{"q1", "q2", "q3", "q4"}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, g := range groups {
		if g.Value != want[i] {
			t.Errorf("position %d = %q, want %q", i, g.Value, want[i])
		}
	}
}

func TestAggregateByQuarterUnknownKeysSortLast(t *testing.T) {
	rows := []CostRecord{
		{Quarter: "bogus", TotalIncurredCost: 50},
		{Quarter: "q2", TotalIncurredCost: 10},
		{Quarter: "", TotalIncurredCost: 999}, // key "undefined"
	}

	groups := AggregateByQuarter(rows)
	if groups[0].Value != "q2" {
		t.Fatalf("first group = %q, want q2", groups[0].Value)
	}
	// The two unknown keys keep their cost-descending order from the
	// underlying dimension aggregation.
	if groups[1].Value != UndefinedKey || groups[2].Value != "bogus" {
		t.Errorf("unknown key order = %q,%q, want undefined,bogus", groups[1].Value, groups[2].Value)
	}
}

func TestAggregateByQuarterMixedCaseKeys(t *testing.T) {
	rows := []CostRecord{
		{Quarter: "Q2", TotalIncurredCost: 1},
		{Quarter: "Q1", TotalIncurredCost: 2},
	}
	groups := AggregateByQuarter(rows)
	if groups[0].Value != "Q1" || groups[1].Value != "Q2" {
		t.Errorf("order = %q,%q, want Q1,Q2 (lookup lower-cases the key)", groups[0].Value, groups[1].Value)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if groups := AggregateByDimension(nil, DimWarehouse); len(groups) != 0 {
		t.Errorf("expected no groups for empty input, got %d", len(groups))
	}
	if groups := AggregateByQuarter(nil); len(groups) != 0 {
		t.Errorf("expected no quarter groups for empty input, got %d", len(groups))
	}
}
