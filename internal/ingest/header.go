package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"tcoboard/internal/core"
)

// field identifies one logical column of the cost-allocation sheet.
type field int

const (
	fieldYear field = iota
	fieldQuarter
	fieldWarehouse
	fieldType
	fieldGLAccountNo
	fieldGLAccountName
	fieldCostType
	fieldCategory
	fieldOpexCapex
	fieldTotalIncurredCost
	fieldValueWH
	fieldValueTRS
	fieldValueDistribution
	fieldValueLastMile
	fieldValueProceed3PLWH
	fieldValueProceed3PLTRS
	fieldTotalPharmacyDistLM
	fieldTotalProceed3PL
	fieldTotalDistributionCost
)

// headerAliases maps normalized header text to the field it carries. Finance
// teams rename and re-space columns between quarters, so each field accepts
// the spellings observed in real uploads.
var headerAliases = map[string]field{
	"year": fieldYear,

	"quarter": fieldQuarter,
	"qtr":     fieldQuarter,
	"period":  fieldQuarter,

	"warehouse":     fieldWarehouse,
	"warehousename": fieldWarehouse,
	"wh":            fieldWarehouse,

	"type": fieldType,

	"glaccountno":     fieldGLAccountNo,
	"glaccountnumber": fieldGLAccountNo,
	"glaccno":         fieldGLAccountNo,

	"glaccountname":        fieldGLAccountName,
	"glaccname":            fieldGLAccountName,
	"glaccountdescription": fieldGLAccountName,

	"costtype": fieldCostType,

	"tcomodelcategories": fieldCategory,
	"tcomodelcategory":   fieldCategory,
	"tcocategory":        fieldCategory,

	"opexcapex":   fieldOpexCapex,
	"opexvscapex": fieldOpexCapex,

	"totalincurredcost": fieldTotalIncurredCost,
	"totalincuredcost":  fieldTotalIncurredCost, // recurring typo in source sheets
	"incurredcost":      fieldTotalIncurredCost,

	"valuewh":        fieldValueWH,
	"warehousevalue": fieldValueWH,

	"valuetrs":            fieldValueTRS,
	"transportationvalue": fieldValueTRS,

	"valuedistribution": fieldValueDistribution,
	"distributionvalue": fieldValueDistribution,

	"valuelastmile": fieldValueLastMile,
	"lastmilevalue": fieldValueLastMile,

	"valueproceed3plwh": fieldValueProceed3PLWH,
	"proceed3plwh":      fieldValueProceed3PLWH,

	"valueproceed3pltrs": fieldValueProceed3PLTRS,
	"proceed3pltrs":      fieldValueProceed3PLTRS,

	"totalpharmacydistlm":               fieldTotalPharmacyDistLM,
	"totalpharmacydistributionlastmile": fieldTotalPharmacyDistLM,
	"pharmacydistlm":                    fieldTotalPharmacyDistLM,

	"totalproceed3pl": fieldTotalProceed3PL,
	"proceed3pltotal": fieldTotalProceed3PL,

	"totaldistributioncost": fieldTotalDistributionCost,
	"distributiontotalcost": fieldTotalDistributionCost,
}

// normalizeHeader collapses the header variance we tolerate: case, spaces,
// underscores, dots, dashes, parenthesised units.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if i := strings.IndexByte(h, '('); i >= 0 {
		h = h[:i]
	}
	var b strings.Builder
	for _, r := range h {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mapHeaders resolves each header cell to a field. Unrecognized headers are
// reported so uploads with renamed columns fail loudly in the warning list
// instead of silently dropping data.
func mapHeaders(headers []string) (map[field]int, []string) {
	cols := make(map[field]int)
	var unmapped []string
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			continue
		}
		f, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			unmapped = append(unmapped, h)
			continue
		}
		if _, dup := cols[f]; !dup {
			cols[f] = i
		}
	}
	return cols, unmapped
}

// ParseRecords maps raw sheet rows into cost records using header-based
// column resolution. Blank rows are skipped; missing or malformed numeric
// cells coerce to 0; validation reports them separately.
func ParseRecords(headers []string, rows [][]string) ([]core.CostRecord, []string) {
	cols, unmapped := mapHeaders(headers)

	var warnings []string
	for _, h := range unmapped {
		warnings = append(warnings, fmt.Sprintf("unrecognized column %q ignored", h))
	}

	records := make([]core.CostRecord, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		rec := core.CostRecord{
			Warehouse:          cell(row, cols, fieldWarehouse),
			Type:               cell(row, cols, fieldType),
			GLAccountNo:        cell(row, cols, fieldGLAccountNo),
			GLAccountName:      cell(row, cols, fieldGLAccountName),
			CostType:           cell(row, cols, fieldCostType),
			TCOModelCategories: cell(row, cols, fieldCategory),
			OpexCapex:          cell(row, cols, fieldOpexCapex),

			TotalIncurredCost:     number(row, cols, fieldTotalIncurredCost),
			ValueWH:               number(row, cols, fieldValueWH),
			ValueTRS:              number(row, cols, fieldValueTRS),
			ValueDistribution:     number(row, cols, fieldValueDistribution),
			ValueLastMile:         number(row, cols, fieldValueLastMile),
			ValueProceed3PLWH:     number(row, cols, fieldValueProceed3PLWH),
			ValueProceed3PLTRS:    number(row, cols, fieldValueProceed3PLTRS),
			TotalPharmacyDistLM:   number(row, cols, fieldTotalPharmacyDistLM),
			TotalProceed3PL:       number(row, cols, fieldTotalProceed3PL),
			TotalDistributionCost: number(row, cols, fieldTotalDistributionCost),
		}

		yearCell := cell(row, cols, fieldYear)
		quarterCell := cell(row, cols, fieldQuarter)
		rec.Year, rec.Quarter = ResolvePeriod(yearCell, quarterCell)

		records = append(records, rec)
	}

	return records, warnings
}

func cell(row []string, cols map[field]int, f field) string {
	i, ok := cols[f]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func number(row []string, cols map[field]int, f field) float64 {
	return ParseNumber(cell(row, cols, f))
}

// ParseNumber coerces a spreadsheet cell to a float. Thousands separators
// and surrounding whitespace are tolerated; accountant-style parentheses
// mean negative. Anything unparseable becomes 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if neg {
		return -v
	}
	return v
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
