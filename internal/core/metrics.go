package core

import (
	"sort"
	"strings"
)

// breakdownLimit caps the warehouse and category breakdowns to the ten most
// expensive groups. Quarter, cost-type and GL-account breakdowns are returned
// in full.
const breakdownLimit = 10

// DashboardMetrics is the fixed-shape summary consumed by the reporting
// layer. Plain data, directly serializable.
type DashboardMetrics struct {
	TotalCost  float64 `json:"totalCost"`
	TotalOpex  float64 `json:"totalOpex"`
	TotalCapex float64 `json:"totalCapex"`

	// DistributionTotal is the pharmacy + distribution + last-mile column
	// composite; Proceed3PLTotal is the 3PL WH+TRS composite. Both are
	// straight column sums, independent of the opex/capex split.
	DistributionTotal float64 `json:"distributionTotal"`
	Proceed3PLTotal   float64 `json:"proceed3PLTotal"`

	CostByQuarter   []AggregatedGroup `json:"costByQuarter"`
	CostByWarehouse []AggregatedGroup `json:"costByWarehouse"`
	CostByCategory  []AggregatedGroup `json:"costByCategory"`
	CostByType      []AggregatedGroup `json:"costByType"`
	CostByGLAccount []AggregatedGroup `json:"costByGLAccount"`

	// TopExpenses is every input row sorted descending by totalIncurredCost.
	// Truncation for display is the caller's business.
	TopExpenses []CostRecord `json:"topExpenses"`
}

// BuildDashboardMetrics computes the full dashboard summary. Pure function:
// no I/O, input never mutated, empty input yields zero totals and empty
// lists.
func BuildDashboardMetrics(rows []CostRecord) DashboardMetrics {
	m := DashboardMetrics{}

	for _, r := range rows {
		m.TotalCost += r.TotalIncurredCost
		switch strings.ToUpper(r.OpexCapex) {
		case "OPEX":
			m.TotalOpex += r.TotalIncurredCost
		case "CAPEX":
			m.TotalCapex += r.TotalIncurredCost
		}
		m.DistributionTotal += r.TotalPharmacyDistLM + r.ValueDistribution + r.ValueLastMile
		m.Proceed3PLTotal += r.ValueProceed3PLWH + r.ValueProceed3PLTRS
	}

	m.CostByQuarter = AggregateByQuarter(rows)
	m.CostByWarehouse = truncate(AggregateByDimension(rows, DimWarehouse), breakdownLimit)
	m.CostByCategory = truncate(AggregateByDimension(rows, DimCategory), breakdownLimit)
	m.CostByType = AggregateByDimension(rows, DimCostType)
	m.CostByGLAccount = AggregateByDimension(rows, DimGLAccount)

	top := make([]CostRecord, len(rows))
	copy(top, rows)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].TotalIncurredCost > top[j].TotalIncurredCost
	})
	m.TopExpenses = top

	return m
}

func truncate(groups []AggregatedGroup, n int) []AggregatedGroup {
	if len(groups) > n {
		return groups[:n]
	}
	return groups
}

// FilterOptions lists the distinct non-empty values observed per filterable
// dimension, sorted, for populating UI dropdowns.
type FilterOptions struct {
	Years      []int    `json:"years"`
	Quarters   []string `json:"quarters"`
	Warehouses []string `json:"warehouses"`
	Types      []string `json:"types"`
	CostTypes  []string `json:"costTypes"`
	OpexCapex  []string `json:"opexCapex"`
}

// CollectFilterOptions scans rows once per dimension and returns the sorted
// distinct value sets.
func CollectFilterOptions(rows []CostRecord) FilterOptions {
	years := map[int]struct{}{}
	for _, r := range rows {
		if r.Year != 0 {
			years[r.Year] = struct{}{}
		}
	}
	yearList := make([]int, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}
	sort.Ints(yearList)

	return FilterOptions{
		Years:      yearList,
		Quarters:   distinctValues(rows, func(r CostRecord) string { return r.Quarter }),
		Warehouses: distinctValues(rows, func(r CostRecord) string { return r.Warehouse }),
		Types:      distinctValues(rows, func(r CostRecord) string { return r.Type }),
		CostTypes:  distinctValues(rows, func(r CostRecord) string { return r.CostType }),
		OpexCapex:  distinctValues(rows, func(r CostRecord) string { return r.OpexCapex }),
	}
}

func distinctValues(rows []CostRecord, get func(CostRecord) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range rows {
		v := get(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
