package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tcoboard/internal/core"
)

// parseFilter extracts the sparse record filter from query parameters.
// Absent parameters stay as zero values, meaning "no constraint".
func parseFilter(r *http.Request) core.Filter {
	q := r.URL.Query()
	f := core.Filter{
		Quarter:   strings.ToLower(strings.TrimSpace(q.Get("quarter"))),
		Warehouse: strings.TrimSpace(q.Get("warehouse")),
		Type:      strings.TrimSpace(q.Get("type")),
		CostType:  strings.TrimSpace(q.Get("costType")),
		OpexCapex: strings.TrimSpace(q.Get("opexCapex")),
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			f.Year = y
		}
	}
	return f
}

// filterCacheKey builds a stable cache key from the filter values.
func filterCacheKey(f core.Filter) string {
	return strings.Join([]string{
		strconv.Itoa(f.Year), f.Quarter, f.Warehouse, f.Type, f.CostType, f.OpexCapex,
	}, "|")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
