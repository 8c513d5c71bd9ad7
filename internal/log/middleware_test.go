package log

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareAttachesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentHTTP,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	requestIDs := RequestIDMiddleware(func(*http.Request) string { return "req_fixed" })

	handler := Middleware(logger)(requestIDs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handler reached")
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	out := buf.String()
	if !strings.Contains(out, "handler reached") {
		t.Fatalf("log output missing handler message: %q", out)
	}
	if !strings.Contains(out, "request_id=req_fixed") {
		t.Errorf("log output missing request id: %q", out)
	}
	if !strings.Contains(out, "component=http") {
		t.Errorf("log output missing component: %q", out)
	}
}

func TestFromContextFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	logger := FromContext(r.Context())
	if logger == nil {
		t.Fatal("FromContext should never return nil")
	}
	if logger.Component() != "unknown" {
		t.Errorf("Component() = %q, want unknown", logger.Component())
	}
}
