package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ironbridge-it/website-api/internal/content"
	httpmiddleware "github.com/ironbridge-it/website-api/internal/http/middleware"
	"github.com/ironbridge-it/website-api/internal/leads"
	"github.com/ironbridge-it/website-api/pkg/logging"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	LeadsHandler   *leads.Handler
	ContentHandler *content.Handler
	MetricsHandler http.Handler

	// Throttle guards the read-only API routes. Nil disables throttling.
	Throttle           *httpmiddleware.Throttle
	CORSAllowedOrigins []string

	// Database is pinged by /health when set.
	Database Pinger
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RecoverJSON(cfg.Logger))
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck(cfg.Database))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.LeadsHandler != nil {
			api.Post("/contact", cfg.LeadsHandler.Submit)
		}
		if cfg.ContentHandler != nil {
			api.Group(func(read chi.Router) {
				if cfg.Throttle != nil {
					read.Use(httpmiddleware.RateLimit(cfg.Throttle))
				}
				read.Get("/case-studies", cfg.ContentHandler.ListCaseStudies)
				read.Get("/solutions", cfg.ContentHandler.ListSolutions)
			})
		}
	})

	return r
}

func healthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
