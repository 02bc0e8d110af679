package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tutorly/internal/availability/service"
	httputil "tutorly/pkg/http"
	"tutorly/pkg/logger"
	"tutorly/pkg/model"
)

type SlotHandler struct {
	service service.TutorAvailabilityService
	log     *logger.Logger
}

func NewSlotHandler(service service.TutorAvailabilityService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
	}
}

func (h *SlotHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reg model.SlotRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Register", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	slots, err := h.service.Register(r.Context(), &reg)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, slots); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	tutorID := r.URL.Query().Get("tutor_id")
	if id == "" || tutorID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Slot ID and 'tutor_id' query parameter are required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Delete", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if err := h.service.Delete(r.Context(), id, tutorID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotHandler) ListByTutor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tutorID := ps.ByName("id")
	if tutorID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Tutor ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "ListByTutor", "operation", "WriteJSON", "error", err)
		}
		return
	}

	slots, err := h.service.ListByTutor(r.Context(), tutorID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByTutor", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByTutor", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/slots", h.Register)
	router.DELETE("/api/v1/slots/id/:id", h.Delete)
	router.GET("/api/v1/slots/tutors/:id", h.ListByTutor)
}
