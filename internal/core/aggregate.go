package core

import (
	"sort"
	"strings"
)

// AggregatedGroup is one output bucket of an aggregation: the sum of every
// tracked measure over the records sharing a dimension value. Groups are
// keyed by the exact stringified field value, no fuzzy bucketing.
type AggregatedGroup struct {
	Dimension Dimension `json:"dimension"`
	Value     string    `json:"value"`

	TotalCost         float64 `json:"totalCost"`
	WarehouseCost     float64 `json:"warehouseCost"`
	TransportCost     float64 `json:"transportationCost"`
	DistributionCost  float64 `json:"distributionCost"`
	LastMileCost      float64 `json:"lastMileCost"`
	PharmaciesCost    float64 `json:"pharmaciesCost"`
	Proceed3PLWHCost  float64 `json:"proceed3PLWHCost"`
	Proceed3PLTRSCost float64 `json:"proceed3PLTRSCost"`

	OpexAmount   float64 `json:"opexAmount"`
	CapexAmount  float64 `json:"capexAmount"`
	ConstantCost float64 `json:"constantCost"`
	VariableCost float64 `json:"variableCost"`

	RowCount int `json:"rowCount"`
}

// AggregateByDimension folds rows into one group per distinct dimension
// value. The result is sorted descending by TotalCost; ties keep first-seen
// order. Records with an empty dimension value form their own "undefined"
// group rather than being dropped, so the rowCount invariant holds:
// sum(RowCount) == len(rows).
func AggregateByDimension(rows []CostRecord, dim Dimension) []AggregatedGroup {
	byKey := make(map[string]*AggregatedGroup)
	var order []string

	for _, r := range rows {
		key := dim.Value(r)
		g, ok := byKey[key]
		if !ok {
			g = &AggregatedGroup{Dimension: dim, Value: key}
			byKey[key] = g
			order = append(order, key)
		}
		accumulate(g, r)
	}

	out := make([]AggregatedGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalCost > out[j].TotalCost
	})
	return out
}

func accumulate(g *AggregatedGroup, r CostRecord) {
	g.TotalCost += r.TotalIncurredCost
	g.WarehouseCost += r.ValueWH
	g.TransportCost += r.ValueTRS
	g.DistributionCost += r.ValueDistribution
	g.LastMileCost += r.ValueLastMile
	g.PharmaciesCost += r.TotalPharmacyDistLM
	g.Proceed3PLWHCost += r.ValueProceed3PLWH
	g.Proceed3PLTRSCost += r.ValueProceed3PLTRS

	// OPEX/CAPEX classification is case-insensitive; anything else (including
	// empty) contributes to neither bucket.
	switch strings.ToUpper(r.OpexCapex) {
	case "OPEX":
		g.OpexAmount += r.TotalIncurredCost
	case "CAPEX":
		g.CapexAmount += r.TotalIncurredCost
	}

	// Constant/Variable is an exact match against the source literals.
	switch r.CostType {
	case "Constant":
		g.ConstantCost += r.TotalIncurredCost
	case "Variable":
		g.VariableCost += r.TotalIncurredCost
	}

	g.RowCount++
}

// quarterOrder maps normalized quarter keys to their calendar position.
// Anything else sorts last.
var quarterOrder = map[string]int{"q1": 1, "q2": 2, "q3": 3, "q4": 4}

const quarterOrderUnknown = 999

// AggregateByQuarter groups by quarter and re-orders the result q1..q4
// instead of by cost. Keys not matching q1-q4 (lower-cased before lookup)
// sort last, keeping their cost-descending relative order.
func AggregateByQuarter(rows []CostRecord) []AggregatedGroup {
	groups := AggregateByDimension(rows, DimQuarter)
	sort.SliceStable(groups, func(i, j int) bool {
		return quarterRank(groups[i].Value) < quarterRank(groups[j].Value)
	})
	return groups
}

func quarterRank(key string) int {
	if n, ok := quarterOrder[strings.ToLower(key)]; ok {
		return n
	}
	return quarterOrderUnknown
}
