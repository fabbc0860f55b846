package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"darassa/internal/scheduling/service"
	apperrors "darassa/pkg/errors"
	httputil "darassa/pkg/http"
	"darassa/pkg/logger"
	"darassa/pkg/model"
	"darassa/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

// statusAll is the dashboard's "no status filter" value.
const statusAll = "all"

// checkAvailabilityRequest is the wire body of POST /calendar/check-availability.
type checkAvailabilityRequest struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	FormateurID string `json:"formateurId"`
	SalleID     string `json:"salleId"`
}

type CalendarHandler struct {
	checker  service.AvailabilityChecker
	calendar service.CalendarService
	log      *logger.Logger
}

func NewCalendarHandler(checker service.AvailabilityChecker, calendar service.CalendarService, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		checker:  checker,
		calendar: calendar,
		log:      log,
	}
}

func (h *CalendarHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req checkAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query, err := req.toQuery()
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.checker.CheckAvailability(r.Context(), query)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, result); err != nil {
		h.log.Error("failed to write JSON response", "handler", "CheckAvailability", "operation", "WriteJSON", "error", err)
	}
}

// toQuery parses the ISO-8601 dates. A missing date is left zero for the
// validator to report; a present but unparsable one is malformed input.
func (req checkAvailabilityRequest) toQuery() (model.AvailabilityQuery, error) {
	start, err := parseBodyTime("startDate", req.StartDate)
	if err != nil {
		return model.AvailabilityQuery{}, err
	}
	end, err := parseBodyTime("endDate", req.EndDate)
	if err != nil {
		return model.AvailabilityQuery{}, err
	}

	return model.AvailabilityQuery{
		StartTime: start,
		EndTime:   end,
		TrainerID: sanitizer.NormalizeID(req.FormateurID),
		RoomID:    sanitizer.NormalizeID(req.SalleID),
	}, nil
}

func parseBodyTime(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, ok := httputil.ParseISOTime(value)
	if !ok {
		return time.Time{}, apperrors.InvalidInput("invalid " + field + ", must be ISO-8601: " + value)
	}
	return t, nil
}

func (h *CalendarHandler) Events(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := calendarFilterFrom(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Events", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	events, err := h.calendar.ListEvents(r.Context(), filter)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Events", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, events); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Events", "operation", "WriteJSON", "error", err)
	}
}

func calendarFilterFrom(r *http.Request) (model.CalendarFilter, error) {
	start, err := httputil.ExtractTimeParam(r, "startDate")
	if err != nil {
		return model.CalendarFilter{}, err
	}
	end, err := httputil.ExtractTimeParam(r, "endDate")
	if err != nil {
		return model.CalendarFilter{}, err
	}

	query := r.URL.Query()
	status := strings.TrimSpace(query.Get("status"))
	if strings.EqualFold(status, statusAll) {
		status = ""
	}

	return model.CalendarFilter{
		StartDate:       start,
		EndDate:         end,
		TrainerID:       query.Get("formateurId"),
		FormationTypeID: query.Get("formationTypeId"),
		Status:          model.Status(strings.ToLower(status)),
		SearchTerm:      query.Get("searchTerm"),
	}, nil
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/calendar/check-availability", requireRoles(h.CheckAvailability, model.SchedulerRoles...))
	router.GET("/calendar/events", requireRoles(h.Events, model.Roles...))
}
