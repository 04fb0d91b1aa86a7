package http

import (
	"net/http"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	exporter     http.Handler
	errorHandler *apperrors.ErrorHandler
}

// NewMetricsHandler wraps the exporter handler. A nil exporter, as when
// metrics are disabled, answers 404.
func NewMetricsHandler(exporter http.Handler, errorHandler *apperrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		h.errorHandler.NotFound(w, r)
		return
	}
	h.exporter.ServeHTTP(w, r)
}
