package core

// Filter is a sparse set of field constraints. Zero-valued fields are
// wildcards; present fields must match the record exactly. Callers are
// responsible for normalizing case (quarter and opexCapex are compared as
// provided).
type Filter struct {
	Year      int    `json:"year,omitempty"`
	Quarter   string `json:"quarter,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	Type      string `json:"type,omitempty"`
	CostType  string `json:"costType,omitempty"`
	OpexCapex string `json:"opexCapex,omitempty"`
}

// IsZero reports whether no constraint is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether every present constraint equals the record's
// corresponding field.
func (f Filter) Matches(r CostRecord) bool {
	if f.Year != 0 && r.Year != f.Year {
		return false
	}
	if f.Quarter != "" && r.Quarter != f.Quarter {
		return false
	}
	if f.Warehouse != "" && r.Warehouse != f.Warehouse {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.CostType != "" && r.CostType != f.CostType {
		return false
	}
	if f.OpexCapex != "" && r.OpexCapex != f.OpexCapex {
		return false
	}
	return true
}

// FilterRecords returns the subsequence of rows matching f, preserving order.
func FilterRecords(rows []CostRecord, f Filter) []CostRecord {
	if f.IsZero() {
		out := make([]CostRecord, len(rows))
		copy(out, rows)
		return out
	}
	var out []CostRecord
	for _, r := range rows {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Predicate is a boolean condition over a single record.
type Predicate func(CostRecord) bool

// PeriodPredicate matches records belonging to one reporting interval.
func PeriodPredicate(year int, quarter string) Predicate {
	return func(r CostRecord) bool {
		return r.Year == year && r.Quarter == quarter
	}
}

// Partition splits rows into the subset matching current and the subset
// matching previous in a single pass. The predicates are applied
// independently: a row satisfying both appears in both subsets.
func Partition(rows []CostRecord, current, previous Predicate) (cur, prev []CostRecord) {
	for _, r := range rows {
		if current != nil && current(r) {
			cur = append(cur, r)
		}
		if previous != nil && previous(r) {
			prev = append(prev, r)
		}
	}
	return cur, prev
}
