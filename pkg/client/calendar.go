package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"darassa/pkg/model"
)

type CalendarClient struct {
	httpClient *HttpClient
}

func NewCalendarClient(httpClient *HttpClient) *CalendarClient {
	return &CalendarClient{httpClient: httpClient}
}

// CheckAvailabilityRequest mirrors the dashboard's request body.
type CheckAvailabilityRequest struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	FormateurID string `json:"formateurId"`
	SalleID     string `json:"salleId,omitempty"`
}

func (c *CalendarClient) CheckAvailabilityRaw(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/calendar/check-availability", body)
}

// CheckAvailability returns the decoded result on 200 and an error carrying
// the server message otherwise. Callers must treat any error as "cannot
// confirm", never as available.
func (c *CalendarClient) CheckAvailability(ctx context.Context, req CheckAvailabilityRequest) (*model.AvailabilityResult, error) {
	resp, err := c.CheckAvailabilityRaw(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("check availability: status %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var result model.AvailabilityResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	return &result, nil
}

type EventsQuery struct {
	StartDate       *time.Time
	EndDate         *time.Time
	FormateurID     string
	FormationTypeID string
	Status          string
	SearchTerm      string
}

func (q EventsQuery) Encode() string {
	v := url.Values{}
	if q.StartDate != nil {
		v.Set("startDate", q.StartDate.Format(time.RFC3339))
	}
	if q.EndDate != nil {
		v.Set("endDate", q.EndDate.Format(time.RFC3339))
	}
	if q.FormateurID != "" {
		v.Set("formateurId", q.FormateurID)
	}
	if q.FormationTypeID != "" {
		v.Set("formationTypeId", q.FormationTypeID)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.SearchTerm != "" {
		v.Set("searchTerm", q.SearchTerm)
	}
	return v.Encode()
}

func (c *CalendarClient) EventsRaw(ctx context.Context, q EventsQuery) (*Response, error) {
	path := "/calendar/events"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return c.httpClient.GET(ctx, path)
}

func (c *CalendarClient) Events(ctx context.Context, q EventsQuery) ([]model.CalendarEvent, error) {
	resp, err := c.EventsRaw(ctx, q)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list events: status %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var events []model.CalendarEvent
	if err := resp.DecodeJSON(&events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}
