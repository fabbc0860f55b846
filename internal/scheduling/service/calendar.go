package service

import (
	"context"
	"time"

	"darassa/pkg/config"
	apperrors "darassa/pkg/errors"
	"darassa/pkg/model"
	"darassa/pkg/sanitizer"
)

type CalendarFinder interface {
	FindForCalendar(ctx context.Context, f model.CalendarFilter) ([]*model.ScheduledItem, error)
}

type CalendarService interface {
	ListEvents(ctx context.Context, f model.CalendarFilter) ([]model.CalendarEvent, error)
}

type calendarService struct {
	store      CalendarFinder
	cfg        *config.Config
	defaultLoc *time.Location
}

func NewCalendarService(store CalendarFinder, cfg *config.Config) CalendarService {
	loc, err := time.LoadLocation(cfg.CalendarTimeZone)
	if err != nil {
		cfg.Log.Warn("Unknown calendar time zone, falling back to UTC", "time_zone", cfg.CalendarTimeZone, "error", err)
		loc = time.UTC
	}
	return &calendarService{store: store, cfg: cfg, defaultLoc: loc}
}

// ListEvents returns the scheduled items matching f, reshaped for the
// dashboard calendar and sorted by start time.
func (s *calendarService) ListEvents(ctx context.Context, f model.CalendarFilter) ([]model.CalendarEvent, error) {
	if f.StartDate != nil && f.EndDate != nil && !f.StartDate.Before(*f.EndDate) {
		return nil, apperrors.Validation("Invalid calendar window", map[string]any{
			"endDate": "endDate must be after startDate",
		})
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperrors.Validation("Invalid calendar filter", map[string]any{
			"status": "status must be one of: planned confirmed cancelled completed",
		})
	}

	f.TrainerID = sanitizer.NormalizeID(f.TrainerID)
	f.FormationTypeID = sanitizer.NormalizeID(f.FormationTypeID)
	f.SearchTerm = sanitizer.NormalizeSearchTerm(f.SearchTerm)
	if f.Limit <= 0 || f.Limit > s.cfg.CalendarMaxEvents {
		f.Limit = s.cfg.CalendarMaxEvents
	}

	items, err := s.store.FindForCalendar(ctx, f)
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list calendar events", "error", err)
		return nil, apperrors.Transient("Failed to retrieve calendar events", err)
	}

	events := make([]model.CalendarEvent, 0, len(items))
	for _, item := range items {
		events = append(events, s.toCalendarEvent(item))
	}
	return events, nil
}

func (s *calendarService) toCalendarEvent(item *model.ScheduledItem) model.CalendarEvent {
	loc := s.defaultLoc
	if item.TimeZone != "" {
		if l, err := time.LoadLocation(item.TimeZone); err == nil {
			loc = l
		}
	}

	return model.CalendarEvent{
		ID:                item.ID,
		Summary:           item.Title,
		Description:       item.Description,
		Start:             calendarTime(item.StartTime, loc),
		End:               calendarTime(item.EndTime, loc),
		Location:          item.Location,
		Formateur:         item.TrainerName,
		ParticipantsCount: len(item.Participants),
		Type:              item.Kind,
		Status:            item.Status,
	}
}

func calendarTime(t time.Time, loc *time.Location) model.CalendarTime {
	return model.CalendarTime{
		DateTime: t.In(loc).Format(time.RFC3339),
		TimeZone: loc.String(),
	}
}
