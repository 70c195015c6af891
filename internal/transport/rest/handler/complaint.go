package handler

import (
	"errors"
	"net/http"

	"grievanceportal/internal/model"
	"grievanceportal/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ComplaintHandler handles complaint tracking endpoints
type ComplaintHandler struct {
	complaintSvc *service.ComplaintService
	logger       *zap.Logger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaintSvc *service.ComplaintService, logger *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: complaintSvc, logger: logger}
}

// Get handles GET /v1/complaints/{id}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.complaintSvc.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, service.ErrComplaintNotFound) {
		writeError(w, http.StatusNotFound, "complaint not found")
		return
	}
	if err != nil {
		h.logger.Error("complaint lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Search handles GET /v1/complaints?q=
func (h *ComplaintHandler) Search(w http.ResponseWriter, r *http.Request) {
	ids, err := h.complaintSvc.Search(r.Context(), r.URL.Query().Get("q"))
	if errors.Is(err, service.ErrEmptyQuery) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("complaint search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

// UpdateStatus handles PATCH /v1/complaints/{id}/status
func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.complaintSvc.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrComplaintNotFound):
		writeError(w, http.StatusNotFound, "complaint not found")
	case errors.Is(err, service.ErrStatusConflict):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		h.logger.Error("status update failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "status update failed")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}
