package validator

import (
	"errors"
	"testing"
	"time"

	"darassa/pkg/logger"
	"darassa/pkg/model"
)

const (
	trainerID = "65f1a2b3c4d5e6f708091a2b"
	roomID    = "65f1a2b3c4d5e6f708091a2c"
)

var (
	nine   = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	eleven = time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
)

func newValidator() *ScheduledItemValidator {
	return NewScheduledItemValidator(logger.Discard())
}

func validItem() *model.ScheduledItem {
	return &model.ScheduledItem{
		Kind:      model.KindSession,
		Title:     "Go fundamentals",
		TrainerID: trainerID,
		RoomID:    roomID,
		Status:    model.StatusPlanned,
		StartTime: nine,
		EndTime:   eleven,
		TimeZone:  "Africa/Casablanca",
	}
}

func fieldsOf(t *testing.T, err error) map[string]any {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	return verrs.Fields()
}

func TestValidate_ScheduledItem(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.ScheduledItem)
		wantField string
	}{
		{"valid", func(*model.ScheduledItem) {}, ""},
		{"missing title", func(i *model.ScheduledItem) { i.Title = "" }, "title"},
		{"unknown kind", func(i *model.ScheduledItem) { i.Kind = "webinar" }, "kind"},
		{"bad trainer id", func(i *model.ScheduledItem) { i.TrainerID = "trainer-1" }, "trainer_id"},
		{"bad room id", func(i *model.ScheduledItem) { i.RoomID = "room-1" }, "room_id"},
		{"end before start", func(i *model.ScheduledItem) { i.EndTime = nine.Add(-time.Hour) }, "end_time"},
		{"zero width", func(i *model.ScheduledItem) { i.EndTime = nine }, "end_time"},
		{"missing start", func(i *model.ScheduledItem) { i.StartTime = time.Time{} }, "start_time"},
		{"bad time zone", func(i *model.ScheduledItem) { i.TimeZone = "Mars/Olympus" }, "time_zone"},
		{"bad participant", func(i *model.ScheduledItem) { i.Participants = []string{"nope"} }, "participants[0]"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(item)

			err := v.Validate(item)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if _, ok := fieldsOf(t, err)[tt.wantField]; !ok {
				t.Errorf("expected an error on %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateAvailabilityQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     model.AvailabilityQuery
		wantField string
	}{
		{"valid", model.AvailabilityQuery{StartTime: nine, EndTime: eleven, TrainerID: trainerID}, ""},
		{"valid with room", model.AvailabilityQuery{StartTime: nine, EndTime: eleven, TrainerID: trainerID, RoomID: roomID}, ""},
		{"start equals end", model.AvailabilityQuery{StartTime: nine, EndTime: nine, TrainerID: trainerID}, "endDate"},
		{"start after end", model.AvailabilityQuery{StartTime: eleven, EndTime: nine, TrainerID: trainerID}, "endDate"},
		{"missing trainer", model.AvailabilityQuery{StartTime: nine, EndTime: eleven}, "formateurId"},
		{"malformed trainer", model.AvailabilityQuery{StartTime: nine, EndTime: eleven, TrainerID: "abc"}, "formateurId"},
		{"malformed room", model.AvailabilityQuery{StartTime: nine, EndTime: eleven, TrainerID: trainerID, RoomID: "salle-1"}, "salleId"},
		{"missing end", model.AvailabilityQuery{StartTime: nine, TrainerID: trainerID}, "endDate"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			err := v.ValidateAvailabilityQuery(&q)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if _, ok := fieldsOf(t, err)[tt.wantField]; !ok {
				t.Errorf("expected an error on %q, got %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newValidator()
	start, end := eleven, nine
	if err := v.ValidateUpdate(&model.ScheduledItemUpdate{StartTime: &start, EndTime: &end}); err == nil {
		t.Error("inverted update window must fail")
	}

	room := "salle-2"
	if err := v.ValidateUpdate(&model.ScheduledItemUpdate{RoomID: &room}); err == nil {
		t.Error("malformed room id must fail")
	}

	noRoom := ""
	if err := v.ValidateUpdate(&model.ScheduledItemUpdate{RoomID: &noRoom}); err != nil {
		t.Errorf("an empty room id clears the room: %v", err)
	}

	if err := v.ValidateUpdate(&model.ScheduledItemUpdate{Status: "archived"}); err == nil {
		t.Error("unknown status must fail")
	}
}
