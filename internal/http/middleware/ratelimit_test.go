package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowsBurstThenRejects(t *testing.T) {
	rl := NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("203.0.113.7") {
			t.Fatalf("expected request %d within the burst to pass", i+1)
		}
	}
	if rl.Allow("203.0.113.7") {
		t.Fatal("expected the request after the burst to be rejected")
	}
	// A different IP has its own bucket.
	if !rl.Allow("203.0.113.8") {
		t.Fatal("expected a fresh IP to pass")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(10, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.Allow("203.0.113.7") {
		t.Fatal("expected the first request to pass")
	}
	if rl.Allow("203.0.113.7") {
		t.Fatal("expected an immediate second request to be rejected")
	}

	now = now.Add(200 * time.Millisecond)
	if !rl.Allow("203.0.113.7") {
		t.Fatal("expected the bucket to refill after the interval")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RateLimit(1, 1)

	req := httptest.NewRequest(http.MethodPost, "/forms/leadForm/submit", nil)
	req.RemoteAddr = "203.0.113.7:1234"

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After hint")
	}
}
