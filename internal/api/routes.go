package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{snapshotHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	if h.health != nil {
		r.Get("/health/live", h.health.HandleLiveness)
		r.Get("/health/ready", h.health.HandleReadiness)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", h.GetChartData)
		r.Get("/predictions", h.GetPredictions)
		r.Post("/predictions/export", h.ExportPredictions)
		r.Get("/exports/{id}", h.GetExport)
		r.Get("/cashflow", h.GetCashflow)

		r.Get("/snapshot", h.GetSnapshot)
		r.Post("/refresh", h.RefreshSnapshot)
	})

	return r
}
