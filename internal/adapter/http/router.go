package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/brokerops/commissions/internal/adapter/http/handler"
	"github.com/brokerops/commissions/internal/adapter/http/middleware"
	"github.com/brokerops/commissions/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	DealHandler       *handler.DealHandler
	RequestLogger     *middleware.LoggingMiddleware
	RateLimiter       *middleware.RateLimiter
	LedgerHandler     *handler.LedgerHandler
	PayoutHandler     *handler.PayoutHandler
	SettlementHandler *handler.SettlementHandler
	CapPolicyHandler  *handler.CapPolicyHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	r.Use(middleware.Actor)
	if cfg.RequestLogger != nil {
		r.Use(cfg.RequestLogger.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Deals
		r.Route("/deals", func(r chi.Router) {
			r.Post("/", cfg.DealHandler.Submit)
			r.Get("/{dealId}/commission", cfg.LedgerHandler.GetByDeal)
			r.Post("/{dealId}/reversal", cfg.DealHandler.Reverse)
		})

		// Agents
		r.Route("/agents/{agentId}", func(r chi.Router) {
			r.Get("/commissions", cfg.LedgerHandler.ListByAgent)
			r.Get("/cap", cfg.LedgerHandler.GetCapUtilization)
			r.Put("/cap-policy", cfg.CapPolicyHandler.Set)
			r.Get("/cap-policy", cfg.CapPolicyHandler.Get)
		})

		// Payouts
		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", cfg.PayoutHandler.List)
			r.Get("/ready", cfg.PayoutHandler.ListReady)
			r.Get("/{id}", cfg.PayoutHandler.Get)
			r.Post("/{id}/release", cfg.PayoutHandler.Release)
		})

		// Settlements
		r.Route("/settlements", func(r chi.Router) {
			r.Post("/run", cfg.SettlementHandler.Run)
			r.Get("/{batchId}", cfg.SettlementHandler.GetBatch)
		})
	})

	return r
}
