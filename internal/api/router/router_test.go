package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claimdesk/claimdesk/internal/claims"
	"github.com/claimdesk/claimdesk/internal/http/handlers"
	"github.com/claimdesk/claimdesk/internal/observability/metrics"
	"github.com/claimdesk/claimdesk/pkg/logging"
)

type nullStore struct {
	mu    sync.Mutex
	items map[string]claims.Claim
}

func (s *nullStore) PutClaim(_ context.Context, c claims.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = c
	return nil
}

func (s *nullStore) DeleteClaim(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *nullStore) LoadAll(_ context.Context) ([]claims.Claim, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	repo := claims.NewRepository(&nullStore{items: make(map[string]claims.Claim)}, logger)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("failed to load repository: %v", err)
	}

	reg := prometheus.NewRegistry()
	claimsMetrics := metrics.NewClaimsMetrics(reg)
	claimsMetrics.SetClaimCount(0)

	return New(&Config{
		Logger:         logger,
		ClaimsHandler:  handlers.NewClaimsHandler(repo, nil, claimsMetrics, logger),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "claimdesk_claims_collection_size") {
		t.Error("expected claim gauge to be exported")
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/claims", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestRouterCORSHeaders(t *testing.T) {
	logger := logging.Default()
	repo := claims.NewRepository(&nullStore{items: make(map[string]claims.Claim)}, logger)
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("failed to load repository: %v", err)
	}
	router := New(&Config{
		Logger:             logger,
		ClaimsHandler:      handlers.NewClaimsHandler(repo, nil, nil, logger),
		CORSAllowedOrigins: []string{"https://app.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/claims", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected preflight status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allowed origin echoed back, got %q", got)
	}
}
