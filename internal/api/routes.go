package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pharmacycle/pharma-cycle/internal/metrics"
)

// SetupRoutes configures all routes. hc and reg are optional.
func SetupRoutes(h *Handlers, hc *HealthChecker, reg *metrics.Registry, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	if reg != nil {
		r.Use(reg.Middleware)
	}

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "pharma-cycle-analytics")
			next.ServeHTTP(w, req)
		})
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if hc != nil {
		r.Get("/health", hc.HandleHealth)
		r.Get("/health/live", hc.HandleLiveness)
		r.Get("/health/ready", hc.HandleReadiness)
	}
	if reg != nil {
		r.Method(http.MethodGet, "/metrics", reg.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/timeseries", h.HandleTimeSeries)
			r.Get("/manufacturers", h.HandleManufacturers)
			r.Get("/heatmap", h.HandleHeatmap)
			r.Get("/alerts", h.HandleAlerts)
			r.Get("/summary", h.HandleSummary)
		})

		r.Route("/partner", func(r chi.Router) {
			r.Post("/verify", h.HandleVerifyDisposal)
			r.Put("/verify", h.HandleCompleteDisposal)
			r.Get("/stats", h.HandlePartnerStats)
		})
	})

	return r
}
