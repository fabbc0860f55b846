package model

import "time"

type CalendarFilter struct {
	StartDate       *time.Time
	EndDate         *time.Time
	TrainerID       string
	FormationTypeID string
	Status          Status
	SearchTerm      string
	Limit           int
}

type CalendarTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// CalendarEvent is the display shape consumed by the dashboard calendar.
type CalendarEvent struct {
	ID                string       `json:"id"`
	Summary           string       `json:"summary"`
	Description       string       `json:"description"`
	Start             CalendarTime `json:"start"`
	End               CalendarTime `json:"end"`
	Location          string       `json:"location"`
	Formateur         string       `json:"formateur"`
	ParticipantsCount int          `json:"participantsCount"`
	Type              Kind         `json:"type"`
	Status            Status       `json:"status"`
}
