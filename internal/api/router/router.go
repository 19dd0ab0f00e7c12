package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/claimdesk/claimdesk/internal/http/handlers"
	httpmiddleware "github.com/claimdesk/claimdesk/internal/http/middleware"
	"github.com/claimdesk/claimdesk/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ClaimsHandler      *handlers.ClaimsHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitRPS of 0 disables per-IP rate limiting.
	RateLimitRPS   int
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(httpmiddleware.RateLimit(float64(cfg.RateLimitRPS), cfg.RateLimitBurst))
	}

	r.Get("/health", cfg.ClaimsHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/claims", func(r chi.Router) {
		r.Post("/", cfg.ClaimsHandler.CreateClaim)
		r.Get("/", cfg.ClaimsHandler.ListClaims)

		r.Route("/{claimID}", func(r chi.Router) {
			r.Get("/", cfg.ClaimsHandler.GetClaim)
			r.Put("/", cfg.ClaimsHandler.UpdateClaim)
			r.Delete("/", cfg.ClaimsHandler.DeleteClaim)

			r.Post("/status", cfg.ClaimsHandler.TransitionStatus)
			r.Put("/advance", cfg.ClaimsHandler.UpdateAdvance)
			r.Put("/settlement", cfg.ClaimsHandler.UpdateSettlement)
			r.Get("/report", cfg.ClaimsHandler.GetReport)

			r.Route("/bills", func(r chi.Router) {
				r.Post("/", cfg.ClaimsHandler.AddBill)
				r.Put("/{billID}", cfg.ClaimsHandler.UpdateBill)
				r.Delete("/{billID}", cfg.ClaimsHandler.RemoveBill)
			})
		})
	})

	r.Get("/analytics", cfg.ClaimsHandler.GetAnalytics)
	r.Get("/export/claims.csv", cfg.ClaimsHandler.ExportCSV)

	return r
}
