package http

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()

	var metrics securityMetrics
	if !rl.allow("10.0.0.1", &metrics) {
		t.Error("first request should be allowed")
	}
	if !rl.allow("10.0.0.1", &metrics) {
		t.Error("second request should be allowed")
	}
	if rl.allow("10.0.0.1", &metrics) {
		t.Error("third request should exceed the limit of 2")
	}
	if metrics.rateLimitHits != 1 {
		t.Errorf("rateLimitHits = %d, want 1", metrics.rateLimitHits)
	}

	// Other clients have their own budget.
	if !rl.allow("10.0.0.2", &metrics) {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := newRateLimiter(1, 20*time.Millisecond)
	defer rl.stop()

	if !rl.allow("10.0.0.1", nil) {
		t.Error("first request should be allowed")
	}
	if rl.allow("10.0.0.1", nil) {
		t.Error("second request in the same window should be denied")
	}

	time.Sleep(30 * time.Millisecond)
	if !rl.allow("10.0.0.1", nil) {
		t.Error("request after the window elapsed should be allowed")
	}
}

func TestRateLimiterDropStale(t *testing.T) {
	rl := newRateLimiter(5, 10*time.Millisecond)
	defer rl.stop()

	rl.allow("10.0.0.1", nil)
	rl.allow("10.0.0.2", nil)

	time.Sleep(30 * time.Millisecond)
	rl.dropStale()

	rl.mu.Lock()
	remaining := len(rl.clients)
	rl.mu.Unlock()
	if remaining != 0 {
		t.Errorf("clients after stale cleanup = %d, want 0", remaining)
	}
}

func TestRateLimiterStopIdempotent(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	rl.stop()
	rl.stop()
}
