package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "darassa/pkg/errors"
	"darassa/pkg/logger"
	"darassa/pkg/middleware"
	"darassa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	trainerID = "65f1a2b3c4d5e6f708091a01"
	roomID    = "65f1a2b3c4d5e6f708091b01"
)

type mockAvailabilityChecker struct {
	checkFunc func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error)
}

func (m *mockAvailabilityChecker) CheckAvailability(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
	return m.checkFunc(ctx, q)
}

type mockCalendarService struct {
	listEventsFunc func(ctx context.Context, f model.CalendarFilter) ([]model.CalendarEvent, error)
}

func (m *mockCalendarService) ListEvents(ctx context.Context, f model.CalendarFilter) ([]model.CalendarEvent, error) {
	return m.listEventsFunc(ctx, f)
}

func calendarRouter(checker *mockAvailabilityChecker, calendar *mockCalendarService) *httprouter.Router {
	router := httprouter.New()
	NewCalendarHandler(checker, calendar, logger.Discard()).RegisterRoutes(router)
	return router
}

func withRoles(req *http.Request, roles ...model.Role) *http.Request {
	ctx := middleware.ContextWithPrincipal(req.Context(), middleware.Principal{Subject: "user-1", Roles: roles})
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func TestCheckAvailability_Handler(t *testing.T) {
	var got model.AvailabilityQuery
	checker := &mockAvailabilityChecker{
		checkFunc: func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
			got = q
			c := model.NewConflicts()
			c.Sessions = append(c.Sessions, &model.ScheduledItem{ID: "65f1a2b3c4d5e6f708091c01", Kind: model.KindSession})
			return &model.AvailabilityResult{Available: false, Conflicts: c}, nil
		},
	}

	body := `{"startDate":"2025-03-10T10:00:00Z","endDate":"2025-03-10T12:00:00Z","formateurId":" 65F1A2B3C4D5E6F708091A01 "}`
	req := httptest.NewRequest(http.MethodPost, "/calendar/check-availability", strings.NewReader(body))
	rec := httptest.NewRecorder()
	calendarRouter(checker, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got.TrainerID != trainerID || got.RoomID != "" {
		t.Errorf("unexpected query ids: %+v", got)
	}
	if !got.StartTime.Equal(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("StartTime = %v", got.StartTime)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["available"] != false {
		t.Errorf("available = %v", resp["available"])
	}
	conflicts, _ := resp["conflicts"].(map[string]any)
	for _, key := range []string{"formations", "sessions", "salles"} {
		list, ok := conflicts[key].([]any)
		if !ok {
			t.Errorf("conflicts.%s must be a list, got %v", key, conflicts[key])
			continue
		}
		if key == "sessions" && len(list) != 1 {
			t.Errorf("conflicts.sessions = %v", list)
		}
	}
}

func TestCheckAvailability_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"startDate":`},
		{"malformed start", `{"startDate":"tomorrow","endDate":"2025-03-10T12:00:00Z","formateurId":"` + trainerID + `"}`},
		{"malformed end", `{"startDate":"2025-03-10T10:00:00Z","endDate":"12h","formateurId":"` + trainerID + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &mockAvailabilityChecker{
				checkFunc: func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
					t.Fatal("checker must not run on malformed input")
					return nil, nil
				},
			}
			req := httptest.NewRequest(http.MethodPost, "/calendar/check-availability", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			calendarRouter(checker, nil).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if body := decodeError(t, rec); body.Code != apperrors.CodeInvalidInput {
				t.Errorf("code = %s", body.Code)
			}
		})
	}
}

func TestCheckAvailability_MissingDateReachesValidator(t *testing.T) {
	called := false
	checker := &mockAvailabilityChecker{
		checkFunc: func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
			called = true
			if !q.StartTime.IsZero() {
				t.Errorf("missing startDate must stay zero, got %v", q.StartTime)
			}
			return nil, apperrors.Validation("Invalid availability query", map[string]any{"startDate": "startDate is required"})
		},
	}

	body := `{"endDate":"2025-03-10T12:00:00Z","formateurId":"` + trainerID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/calendar/check-availability", strings.NewReader(body))
	rec := httptest.NewRecorder()
	calendarRouter(checker, nil).ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected the checker to be called")
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCheckAvailability_StoreFailure(t *testing.T) {
	checker := &mockAvailabilityChecker{
		checkFunc: func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
			return nil, apperrors.Transient("Unable to confirm availability", context.DeadlineExceeded)
		},
	}

	body := `{"startDate":"2025-03-10T10:00:00Z","endDate":"2025-03-10T12:00:00Z","formateurId":"` + trainerID + `","salleId":"` + roomID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/calendar/check-availability", strings.NewReader(body))
	rec := httptest.NewRecorder()
	calendarRouter(checker, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"available"`) {
		t.Errorf("an error response must not carry an availability verdict: %s", rec.Body.String())
	}
	resp := decodeError(t, rec)
	if resp.Message != "Unable to confirm availability" || resp.Details[apperrors.DetailRetryable] != true {
		t.Errorf("unexpected error body: %+v", resp)
	}
}

func TestCheckAvailability_Roles(t *testing.T) {
	checker := &mockAvailabilityChecker{
		checkFunc: func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
			return &model.AvailabilityResult{Available: true, Conflicts: model.NewConflicts()}, nil
		},
	}
	body := `{"startDate":"2025-03-10T10:00:00Z","endDate":"2025-03-10T12:00:00Z","formateurId":"` + trainerID + `"}`

	tests := []struct {
		role       model.Role
		wantStatus int
	}{
		{model.RoleTrainer, http.StatusOK},
		{model.RoleCentreManager, http.StatusOK},
		{model.RoleStudent, http.StatusForbidden},
		{model.RoleEnterprise, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			req := withRoles(httptest.NewRequest(http.MethodPost, "/calendar/check-availability", strings.NewReader(body)), tt.role)
			rec := httptest.NewRecorder()
			calendarRouter(checker, nil).ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestEvents_Handler(t *testing.T) {
	var got model.CalendarFilter
	calendar := &mockCalendarService{
		listEventsFunc: func(ctx context.Context, f model.CalendarFilter) ([]model.CalendarEvent, error) {
			got = f
			return []model.CalendarEvent{{ID: "65f1a2b3c4d5e6f708091c01", Summary: "Go"}}, nil
		},
	}

	url := "/calendar/events?startDate=2025-03-01&endDate=2025-04-01&formateurId=" + trainerID + "&status=ALL&searchTerm=go"
	req := withRoles(httptest.NewRequest(http.MethodGet, url, nil), model.RoleStudent)
	rec := httptest.NewRecorder()
	calendarRouter(nil, calendar).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got.StartDate == nil || got.EndDate == nil || got.TrainerID != trainerID || got.SearchTerm != "go" {
		t.Errorf("unexpected filter: %+v", got)
	}
	if got.Status != "" {
		t.Errorf("status=all must not filter, got %q", got.Status)
	}

	var events []model.CalendarEvent
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("response must be a bare list: %v", err)
	}
	if len(events) != 1 || events[0].Summary != "Go" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestEvents_Errors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		serviceErr error
		wantStatus int
	}{
		{"malformed date", "/calendar/events?startDate=01/03/2025", nil, http.StatusBadRequest},
		{"service validation", "/calendar/events?status=postponed", apperrors.Validation("Invalid calendar filter", nil), http.StatusUnprocessableEntity},
		{"store failure", "/calendar/events", apperrors.Transient("Failed to retrieve calendar events", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calendar := &mockCalendarService{
				listEventsFunc: func(ctx context.Context, f model.CalendarFilter) ([]model.CalendarEvent, error) {
					return nil, tt.serviceErr
				},
			}
			rec := httptest.NewRecorder()
			calendarRouter(nil, calendar).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
