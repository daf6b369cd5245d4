package api

import (
	"net/http"

	"github.com/pharmacycle/pharma-cycle/internal/pkg/httputil"
	"github.com/pharmacycle/pharma-cycle/internal/service/analytics"
)

// parseRange reads the inclusive from/to query parameters.
func (h *Handlers) parseRange(r *http.Request) (analytics.Range, error) {
	q := r.URL.Query()
	return analytics.ParseRange(q.Get("from"), q.Get("to"), h.defaultFrom, h.now())
}

// HandleTimeSeries returns {day: {category: quantity}}.
//
//	GET /api/analytics/timeseries?from=&to=
func (h *Handlers) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	rg, err := h.parseRange(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	series, err := h.analytics.TimeSeries(r.Context(), rg)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.OK(w, series)
}

// HandleManufacturers returns {manufacturer: quantity}.
//
//	GET /api/analytics/manufacturers?from=&to=
func (h *Handlers) HandleManufacturers(w http.ResponseWriter, r *http.Request) {
	rg, err := h.parseRange(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	totals, err := h.analytics.Manufacturers(r.Context(), rg)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.OK(w, totals)
}

// HandleHeatmap returns [{name, city, count}] ordered by count.
//
//	GET /api/analytics/heatmap?from=&to=
func (h *Handlers) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	rg, err := h.parseRange(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	locations, err := h.analytics.Heatmap(r.Context(), rg)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.OK(w, locations)
}

// HandleAlerts returns the monitored categories that spiked.
//
//	GET /api/analytics/alerts?from=&to=
func (h *Handlers) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	rg, err := h.parseRange(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	alerts, err := h.analytics.Alerts(r.Context(), rg)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.OK(w, alerts)
}

// HandleSummary returns {summary: {headline, insight, recommendation}}.
//
//	GET /api/analytics/summary?from=&to=
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	rg, err := h.parseRange(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	summary, err := h.analytics.Summary(r.Context(), rg)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	httputil.OK(w, map[string]interface{}{"summary": summary})
}
