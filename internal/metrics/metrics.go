// Package metrics exposes Prometheus counters for the HTTP surface and the
// analytics pipeline on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg             *prometheus.Registry
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	Spikes          *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacycle_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pharmacycle_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacycle_cache_lookups_total",
		Help: "Analytics cache lookups by report and result.",
	}, []string{"endpoint", "result"})
	spikes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pharmacycle_spikes_detected_total",
		Help: "Spike alerts raised per category.",
	}, []string{"category"})

	r.MustRegister(requests, duration, cacheLookups, spikes)
	return &Registry{
		reg:             r,
		Requests:        requests,
		RequestDuration: duration,
		CacheLookups:    cacheLookups,
		Spikes:          spikes,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// CacheLookup records a memoization hit or miss.
func (r *Registry) CacheLookup(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheLookups.WithLabelValues(endpoint, result).Inc()
}

// SpikesDetected adds n alerts for category.
func (r *Registry) SpikesDetected(category string, n int) {
	r.Spikes.WithLabelValues(category).Add(float64(n))
}

// Middleware counts requests by chi route pattern so path parameters do
// not explode label cardinality.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		r.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
