package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"tutorly/internal/availability/service"
	apperrors "tutorly/pkg/errors"
	httputil "tutorly/pkg/http"
	"tutorly/pkg/logger"
	"tutorly/pkg/model"
)

const dateLayout = "2006-01-02"

type AvailabilityHandler struct {
	service service.StudentAvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.StudentAvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Times(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	date, err := parseDate(query.Get("date"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Times", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	durationStr := query.Get("duration_min")
	if durationStr == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'duration_min' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Times", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	minutes, err := strconv.Atoi(durationStr)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid duration_min parameter: %s", durationStr))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Times", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	duration := model.Duration(minutes)

	times, err := h.service.AvailableTimes(r.Context(), date, duration)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Times", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, times); err != nil {
		h.log.Error("failed to write success response", "handler", "Times", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Tutors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Tutors", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	tutors, err := h.service.TutorsForDate(r.Context(), date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Tutors", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, tutors); err != nil {
		h.log.Error("failed to write success response", "handler", "Tutors", "operation", "WriteSuccess", "error", err)
	}
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperrors.InvalidInput("'date' query parameter is required")
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid date parameter: %s, expected YYYY-MM-DD", raw))
	}
	return date, nil
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/times", h.Times)
	router.GET("/api/v1/availability/tutors", h.Tutors)
}
