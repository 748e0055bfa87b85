package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/glcore/internal/adapter/http/handler"
	"github.com/iho/glcore/internal/adapter/http/middleware"
	"github.com/iho/glcore/internal/domain"
	"github.com/iho/glcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	JournalEntryHandler *handler.JournalEntryHandler
	PeriodHandler       *handler.PeriodHandler
	LedgerHandler       *handler.LedgerHandler
	ChartHandler        *handler.ChartHandler // optional
	HealthHandler       *handler.HealthHandler
	IdempotencyStore    usecase.IdempotencyStore
	IdempotencyTTL      time.Duration
	RateLimiter         *middleware.RateLimiter
	MetricsHandler      http.Handler
	Logger              zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor)
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/journal-entries", func(r chi.Router) {
			h := cfg.JournalEntryHandler
			r.Post("/", h.Create)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Post("/{id}/lines", h.AddLine)
			r.Delete("/{id}/lines/{lineId}", h.RemoveLine)
			r.Post("/{id}/submit", h.Submit)
			r.Post("/{id}/approve", h.Approve)
			r.Post("/{id}/reject", h.Reject)
			r.Post("/{id}/post", h.Post)
			r.Post("/{id}/reverse", h.Reverse)
			r.Get("/{id}/events", cfg.LedgerHandler.Events(domain.AggregateTypeJournalEntry))
		})

		r.Route("/periods", func(r chi.Router) {
			h := cfg.PeriodHandler
			r.Post("/", h.Create)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Post("/{id}/reopen", h.Reopen)
			r.Get("/{id}/events", cfg.LedgerHandler.Events(domain.AggregateTypeFinancialPeriod))
			r.Route("/{id}/closing", func(r chi.Router) {
				r.Post("/start", h.StartClosing)
				r.Post("/validation-errors", h.SetValidationErrors)
				r.Post("/validate", h.Validate)
				r.Post("/closing-entries", h.PostClosingEntries)
				r.Post("/close", h.Close)
				r.Post("/rollback", h.Rollback)
				r.Post("/run", h.RunClosing)
			})
		})

		r.Route("/accounts/{id}", func(r chi.Router) {
			r.Get("/balance", cfg.LedgerHandler.GetBalance)
			r.Get("/balance/history", cfg.LedgerHandler.GetHistoricalBalance)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/trial-balance", cfg.LedgerHandler.TrialBalance)
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
		})

		r.Get("/audit", cfg.LedgerHandler.AuditTrail)

		if cfg.ChartHandler != nil {
			r.Route("/chart", func(r chi.Router) {
				r.Get("/", cfg.ChartHandler.Get)
				r.Put("/roles/{role}", cfg.ChartHandler.RemapRole)
				r.Put("/nominal", cfg.ChartHandler.RemapNominal)
			})
		}
	})

	return r
}
