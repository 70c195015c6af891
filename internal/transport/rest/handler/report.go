package handler

import (
	"errors"
	"net/http"

	"grievanceportal/internal/model"
	"grievanceportal/internal/service"
	"grievanceportal/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ReportHandler handles exported-report registry endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
	logger    *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc, logger: logger}
}

// Create handles POST /v1/reports
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.CreateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.reportSvc.Record(r.Context(), userID, &req)
	if errors.Is(err, service.ErrInvalidReport) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to record report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to record report")
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// List handles GET /v1/reports?kind=
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	kind := model.ReportKind(r.URL.Query().Get("kind"))
	reports, err := h.reportSvc.List(r.Context(), userID, kind)
	if errors.Is(err, service.ErrInvalidReport) {
		writeError(w, http.StatusBadRequest, "unknown report kind")
		return
	}
	if err != nil {
		h.logger.Error("failed to list reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// Delete handles DELETE /v1/reports/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.reportSvc.Delete(r.Context(), userID, mux.Vars(r)["id"])
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete report")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
