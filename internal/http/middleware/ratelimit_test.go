package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitBurstThenReject(t *testing.T) {
	handler := RateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/claims", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request rejected, got %d", codes[2])
	}
}

func TestRateLimitTracksPerIP(t *testing.T) {
	limiter := NewRateLimiter(1, 1)

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("first request from first ip should pass")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("second request from first ip should be rejected")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("other ips have their own bucket")
	}
}

func TestRateLimiterMinimumBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 0)
	if !limiter.Allow("10.0.0.1") {
		t.Fatal("a zero burst still admits one request")
	}
}
