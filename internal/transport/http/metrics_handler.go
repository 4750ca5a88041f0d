package http

import (
	"net/http"

	apierrors "bondscope/internal/errors"
)

// MetricsHandler exposes the Prometheus registry.
type MetricsHandler struct {
	prometheus   http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a metrics handler. prometheus may be nil when
// export is disabled.
func NewMetricsHandler(prometheus http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("metrics exporter", nil))
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
