package http

import (
	"net/http"
	"strconv"
	"strings"

	"tcoboard/internal/core"
	"tcoboard/internal/log"
)

// handleDashboard returns the full dashboard metrics for the filtered
// record set. Results are cached per filter combination.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)
	f := parseFilter(r)
	key := filterCacheKey(f)

	if m, found := s.metricsCache.Get(key); found {
		logger.DebugContext(ctx, "Dashboard cache hit", "key", key)
		writeJSON(w, http.StatusOK, m)
		return
	}

	rows, err := s.getRecords(ctx, f)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load records for dashboard",
			log.FieldOperation, log.OpDashboard, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}

	m := core.BuildDashboardMetrics(rows)
	s.metricsCache.Set(key, m)

	logger.InfoContext(ctx, "Dashboard built",
		log.FieldOperation, log.OpDashboard,
		log.FieldRowCount, len(rows),
		log.FieldYear, f.Year,
		log.FieldQuarter, f.Quarter)
	writeJSON(w, http.StatusOK, m)
}

// handleComparison compares two reporting periods along one dimension.
// Query parameters: year1/quarter1 select the previous period,
// year2/quarter2 the current one, dimension picks the join key.
func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)
	q := r.URL.Query()

	year1, err1 := strconv.Atoi(strings.TrimSpace(q.Get("year1")))
	year2, err2 := strconv.Atoi(strings.TrimSpace(q.Get("year2")))
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "year1 and year2 are required numeric parameters")
		return
	}

	quarter1 := strings.ToLower(strings.TrimSpace(q.Get("quarter1")))
	quarter2 := strings.ToLower(strings.TrimSpace(q.Get("quarter2")))
	if quarter1 == "" || quarter2 == "" {
		writeError(w, http.StatusBadRequest, "quarter1 and quarter2 are required parameters")
		return
	}

	dim := core.Dimension(strings.TrimSpace(q.Get("dimension")))
	if dim == "" {
		dim = core.DimWarehouse
	}
	if !dim.Valid() {
		writeError(w, http.StatusBadRequest, "unknown comparison dimension: "+sanitizeInput(string(dim)))
		return
	}

	// Load every record for both periods; the predicates split them.
	rows, err := s.getRecords(ctx, core.Filter{})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load records for comparison",
			log.FieldOperation, log.OpComparison, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load comparison data")
		return
	}

	entries := core.ComparePeriods(rows,
		core.PeriodPredicate(year2, quarter2),
		core.PeriodPredicate(year1, quarter1),
		dim)

	logger.InfoContext(ctx, "Comparison built",
		log.FieldOperation, log.OpComparison,
		log.FieldDimension, string(dim),
		"previous_year", year1, "previous_quarter", quarter1,
		"current_year", year2, "current_quarter", quarter2,
		"entries", len(entries))
	writeJSON(w, http.StatusOK, entries)
}

// handleCosts returns the raw filtered record list.
func (s *Server) handleCosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	rows, err := s.getRecords(ctx, parseFilter(r))
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to list cost records",
			log.FieldOperation, log.OpList, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list cost records")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleFilterOptions returns the distinct values available for each
// filterable dimension, for populating dropdowns.
func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	rows, err := s.getRecords(ctx, core.Filter{})
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to load records for filter options",
			log.FieldOperation, log.OpList, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load filter options")
		return
	}
	writeJSON(w, http.StatusOK, core.CollectFilterOptions(rows))
}
