package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"tcoboard/internal/cache"
	"tcoboard/internal/core"
	"tcoboard/internal/log"
	"tcoboard/internal/storage"
)

// RecordSource provides filtered access to the stored cost records.
type RecordSource interface {
	ListRecords(ctx context.Context, f core.Filter) ([]core.CostRecord, error)
}

// ImportService accepts workbook uploads and reports job status.
type ImportService interface {
	SubmitUpload(ctx context.Context, filename string, file io.Reader) (storage.Import, error)
	GetImport(ctx context.Context, id int64) (storage.Import, error)
}

// Server serves the JSON dashboard API.
type Server struct {
	http.Server
	records     RecordSource
	imports     ImportService
	logger      *log.Logger
	rateLimiter *rateLimiter
	metrics     securityMetrics

	// Aggregations are cheap but the record sets behind them are not, so
	// both the raw filtered rows and the built metrics are cached.
	metricsCache *cache.LRUCache[core.DashboardMetrics]
	recordsCache *cache.LRUCache[[]core.CostRecord]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
// uploadLimit is the accepted upload POSTs per client IP per minute.
func NewServer(addr string, records RecordSource, imports ImportService, uploadLimit int) *Server {
	mux := http.NewServeMux()
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)

	requestIDs := log.RequestIDMiddleware(func(*http.Request) string {
		return generateRequestID()
	})

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: log.Middleware(logger)(requestIDs(mux)),
		},
		records:      records,
		imports:      imports,
		logger:       logger,
		rateLimiter:  newRateLimiter(uploadLimit, time.Minute),
		metricsCache: cache.NewLRUCache[core.DashboardMetrics](100, 5*time.Minute),
		recordsCache: cache.NewLRUCache[[]core.CostRecord](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.metricsCache)
	s.cacheManager.Register(s.recordsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/dashboard", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/api/comparison", s.withSecurityHeaders(s.handleComparison))
	mux.HandleFunc("/api/costs", s.withSecurityHeaders(s.handleCosts))
	mux.HandleFunc("/api/filters", s.withSecurityHeaders(s.handleFilterOptions))
	mux.HandleFunc("/api/uploads", s.withSecurityHeaders(s.handleUpload))
	mux.HandleFunc("/api/uploads/", s.withSecurityHeaders(s.handleUploadStatus))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// InvalidateCaches drops every cached aggregate. Called after an import
// changes the underlying records.
func (s *Server) InvalidateCaches() {
	s.metricsCache.Purge()
	s.recordsCache.Purge()
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		// The logger in context already carries the request ID.
		ctx := r.Context()
		logger := log.FromContext(ctx)

		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if detectSuspiciousRequest(r, &s.metrics) {
			logger.WarnContext(ctx, "Suspicious request detected",
				log.FieldComponent, log.ComponentSecurity,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
		}

		// Uploads are the only expensive mutation; rate limit them.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, &s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(s.rateLimiter.retryAfterSeconds()))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		log.LogHTTPEnd(ctx, logger, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// getRecords loads records for the filter, serving from cache when possible.
func (s *Server) getRecords(ctx context.Context, f core.Filter) ([]core.CostRecord, error) {
	key := filterCacheKey(f)
	logger := log.FromContext(ctx)

	if rows, found := s.recordsCache.Get(key); found {
		logger.DebugContext(ctx, "Records cache hit", "key", key, log.FieldRowCount, len(rows))
		result := make([]core.CostRecord, len(rows))
		copy(result, rows)
		return result, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	rows, err := s.records.ListRecords(cctx, f)
	if err != nil {
		return nil, fmt.Errorf("list cost records: %w", err)
	}

	s.recordsCache.Set(key, rows)
	logger.DebugContext(ctx, "Records cached", "key", key, log.FieldRowCount, len(rows))
	return rows, nil
}
