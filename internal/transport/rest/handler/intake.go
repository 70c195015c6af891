package handler

import (
	"errors"
	"net/http"

	"grievanceportal/internal/catalog"
	"grievanceportal/internal/model"
	"grievanceportal/internal/service"
	"grievanceportal/internal/wizard"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// IntakeHandler handles guided complaint intake sessions
type IntakeHandler struct {
	intakeSvc *service.IntakeService
	logger    *zap.Logger
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(intakeSvc *service.IntakeService, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{intakeSvc: intakeSvc, logger: logger}
}

// validationResponse is the 422 body: the error plus the unchanged session
type validationResponse struct {
	Error      string             `json:"error"`
	QuestionID string             `json:"questionId"`
	Session    *model.SessionView `json:"session"`
}

// Start handles POST /v1/intake/sessions
func (h *IntakeHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req model.StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.intakeSvc.StartSession(r.Context(), &req)
	if err != nil {
		h.writeIntakeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /v1/intake/sessions/{id}
func (h *IntakeHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.intakeSvc.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeIntakeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Answer handles POST /v1/intake/sessions/{id}/answers
func (h *IntakeHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.intakeSvc.SubmitAnswer(r.Context(), mux.Vars(r)["id"], req.Answer)
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Error:      verr.Message,
			QuestionID: verr.QuestionID,
			Session:    view,
		})
		return
	}
	if err != nil {
		h.writeIntakeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Restart handles POST /v1/intake/sessions/{id}/restart
func (h *IntakeHandler) Restart(w http.ResponseWriter, r *http.Request) {
	view, err := h.intakeSvc.RestartSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeIntakeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Departments handles GET /v1/intake/departments
func (h *IntakeHandler) Departments(w http.ResponseWriter, r *http.Request) {
	cat := h.intakeSvc.Catalog()
	type department struct {
		ID        string            `json:"id"`
		Names     map[string]string `json:"names"`
		Questions int               `json:"questions"`
	}

	out := []department{}
	for _, d := range cat.Departments() {
		out = append(out, department{ID: d.ID, Names: d.Names, Questions: d.Len()})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages":   cat.Languages(),
		"departments": out,
	})
}

func (h *IntakeHandler) writeIntakeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrUnknownDepartment), errors.Is(err, catalog.ErrUnsupportedLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, wizard.ErrBusy), errors.Is(err, wizard.ErrCompleted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("intake request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "intake request failed")
	}
}
