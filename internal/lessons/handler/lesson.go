package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tutorly/internal/lessons/service"
	httputil "tutorly/pkg/http"
	"tutorly/pkg/logger"
	"tutorly/pkg/model"
)

type LessonHandler struct {
	service service.LessonService
	log     *logger.Logger
}

func NewLessonHandler(service service.LessonService, log *logger.Logger) *LessonHandler {
	return &LessonHandler{
		service: service,
		log:     log,
	}
}

func (h *LessonHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	lesson, err := h.service.Book(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, lesson); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *LessonHandler) ListByStudent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	studentID := ps.ByName("id")
	if studentID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Student ID parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "ListByStudent", "operation", "WriteJSON", "error", err)
		}
		return
	}

	lessons, err := h.service.ListByStudent(r.Context(), studentID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByStudent", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, lessons); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByStudent", "operation", "WriteSuccess", "error", err)
	}
}

func (h *LessonHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/lessons", h.Book)
	router.GET("/api/v1/lessons/students/:id", h.ListByStudent)
}
