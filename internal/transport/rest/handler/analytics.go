package handler

import (
	"net/http"

	"grievanceportal/internal/service"

	"go.uber.org/zap"
)

// AnalyticsHandler serves dashboard counters
type AnalyticsHandler struct {
	analyticsSvc *service.AnalyticsService
	logger       *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsSvc *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc, logger: logger}
}

// Summary handles GET /v1/analytics/summary
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsSvc.Summary(r.Context())
	if err != nil {
		h.logger.Error("analytics summary failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analytics unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
