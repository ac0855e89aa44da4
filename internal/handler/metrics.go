package handler

import (
	"net/http"

	"github.com/shelfmark/shelfmark/internal/metrics"
)

// MetricsHandler serves the in-process counters as JSON.
type MetricsHandler struct {
	recorder *metrics.InMemory
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(recorder *metrics.InMemory) *MetricsHandler {
	return &MetricsHandler{recorder: recorder}
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.recorder.Snapshot())
}
