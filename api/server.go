/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request for tracing
  2. RequestLogger:  Structured zap request logging
  3. Recoverer:      Panic recovery (500 instead of crash)
  4. CORS:           Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/quarters/{quarter}/bonus-config   Quarterly plan management
  /api/rates                             Rate matrix + rules
  /api/spiffs/*                          Spiff definitions
  /api/runs/*                            Calculation run triggers + lookup
  /api/reps/{id}/*                       Per-rep computed results
  /api/summaries                         Monthly per-rep summaries

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Quarterly bonus plan
		r.Route("/quarters/{quarter}", func(r chi.Router) {
			r.Get("/bonus-config", h.GetBonusConfig)
			r.Put("/bonus-config", h.SaveBonusConfig)
		})

		// Rate matrix and rules
		r.Get("/rates", h.GetRateConfig)
		r.Put("/rates", h.SaveRateConfig)

		// Spiff definitions
		r.Route("/spiffs", func(r chi.Router) {
			r.Get("/", h.ListSpiffs)
			r.Post("/", h.CreateSpiff)
			r.Delete("/{id}", h.DeleteSpiff)
		})

		// Calculation runs
		r.Route("/runs", func(r chi.Router) {
			r.Post("/quarter-close", h.RunQuarterClose)
			r.Post("/month-close", h.RunMonthClose)
			r.Get("/{id}", h.GetRun)
		})

		// Computed results
		r.Route("/reps/{id}", func(r chi.Router) {
			r.Get("/bonus", h.GetRepBonus)
			r.Get("/commissions", h.GetRepCommissions)
		})

		r.Get("/summaries", h.GetMonthlySummaries)
	})

	return r
}
