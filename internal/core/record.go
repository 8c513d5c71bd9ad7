package core

import "strconv"

// UndefinedKey is the group key used when a record has no value for the
// requested dimension. Rows without a warehouse (or category, account, ...)
// still have to land somewhere so that rowCount stays honest.
const UndefinedKey = "undefined"

type (
	// CostRecord is one row of quarterly cost-allocation data, already
	// validated and typed by the ingestion layer. Records are immutable
	// once constructed.
	CostRecord struct {
		Year               int    `json:"year"`
		Quarter            string `json:"quarter"` // "q1".."q4", lowercased at ingest
		Warehouse          string `json:"warehouse"`
		Type               string `json:"type"`
		GLAccountNo        string `json:"glAccountNo"`
		GLAccountName      string `json:"glAccountName"`
		CostType           string `json:"costType"`
		TCOModelCategories string `json:"tcoModelCategories"`
		OpexCapex          string `json:"opexCapex"`

		TotalIncurredCost     float64 `json:"totalIncurredCost"`
		ValueWH               float64 `json:"valueWH"`
		ValueTRS              float64 `json:"valueTRS"`
		ValueDistribution     float64 `json:"valueDistribution"`
		ValueLastMile         float64 `json:"valueLastMile"`
		ValueProceed3PLWH     float64 `json:"valueProceed3PLWH"`
		ValueProceed3PLTRS    float64 `json:"valueProceed3PLTRS"`
		TotalPharmacyDistLM   float64 `json:"totalPharmacyDistLM"`
		TotalProceed3PL       float64 `json:"totalProceed3PL"`
		TotalDistributionCost float64 `json:"totalDistributionCost"`
	}

	// Dimension is the closed set of fields a caller may group by. Using an
	// enumerated type with a typed accessor keeps grouping compile-time safe
	// instead of indexing records by caller-supplied field names.
	Dimension string
)

const (
	DimWarehouse Dimension = "warehouse"
	DimQuarter   Dimension = "quarter"
	DimCostType  Dimension = "costType"
	DimGLAccount Dimension = "glAccountName"
	DimCategory  Dimension = "tcoModelCategories"
	DimType      Dimension = "type"
	DimOpexCapex Dimension = "opexCapex"
	DimYear      Dimension = "year"
)

// Valid reports whether d is one of the supported grouping dimensions.
func (d Dimension) Valid() bool {
	switch d {
	case DimWarehouse, DimQuarter, DimCostType, DimGLAccount, DimCategory, DimType, DimOpexCapex, DimYear:
		return true
	}
	return false
}

// Value returns the record's stringified value for this dimension.
// Empty values map to UndefinedKey so that every record belongs to exactly
// one group.
func (d Dimension) Value(r CostRecord) string {
	var v string
	switch d {
	case DimWarehouse:
		v = r.Warehouse
	case DimQuarter:
		v = r.Quarter
	case DimCostType:
		v = r.CostType
	case DimGLAccount:
		v = r.GLAccountName
	case DimCategory:
		v = r.TCOModelCategories
	case DimType:
		v = r.Type
	case DimOpexCapex:
		v = r.OpexCapex
	case DimYear:
		if r.Year != 0 {
			v = strconv.Itoa(r.Year)
		}
	}
	if v == "" {
		return UndefinedKey
	}
	return v
}
