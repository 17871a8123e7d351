package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes. health may be nil, in which case
// /health only reports liveness.
func SetupRoutes(h *Handlers, health *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if health != nil {
		r.Get("/health", health.HandleHealth)
		r.Get("/health/ready", health.HandleReadiness)
	} else {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/validation", func(r chi.Router) {
			r.Post("/template", h.ValidateTemplate)
			r.Post("/list", h.ValidateList)
			r.Post("/format", h.ValidateFormat)
		})
		r.Route("/deliverability", func(r chi.Router) {
			r.Post("/probe", h.Probe)
			r.Get("/health", h.HealthMetrics)
			r.Get("/health/history", h.HealthHistory)
			r.Get("/quality/{id}", h.QualityScore)
		})
	})

	return r
}
