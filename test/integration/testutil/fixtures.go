package testutil

import (
	"net/http"
	"testing"
	"time"

	"darassa/pkg/client"
	"darassa/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Day is the fixed date every fixture is scheduled on.
var Day = time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)

func At(hour, minute int) time.Time {
	return Day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func NewID() string {
	return primitive.NewObjectID().Hex()
}

type ScheduledItemBuilder struct {
	item model.ScheduledItem
}

func NewScheduledItemBuilder(kind model.Kind) *ScheduledItemBuilder {
	return &ScheduledItemBuilder{
		item: model.ScheduledItem{
			Kind:         kind,
			Title:        "Introduction to Go",
			Description:  "Hands-on workshop",
			TrainerID:    NewID(),
			TrainerName:  "Amina Benali",
			Location:     "Casablanca",
			Participants: []string{},
			Status:       model.StatusPlanned,
			StartTime:    At(9, 0),
			EndTime:      At(11, 0),
			TimeZone:     "Africa/Casablanca",
		},
	}
}

func (b *ScheduledItemBuilder) WithTrainer(id string) *ScheduledItemBuilder {
	b.item.TrainerID = id
	return b
}

func (b *ScheduledItemBuilder) WithRoom(id string) *ScheduledItemBuilder {
	b.item.RoomID = id
	return b
}

func (b *ScheduledItemBuilder) WithTitle(title string) *ScheduledItemBuilder {
	b.item.Title = title
	return b
}

func (b *ScheduledItemBuilder) WithStatus(status model.Status) *ScheduledItemBuilder {
	b.item.Status = status
	return b
}

func (b *ScheduledItemBuilder) Between(start, end time.Time) *ScheduledItemBuilder {
	b.item.StartTime, b.item.EndTime = start, end
	return b
}

func (b *ScheduledItemBuilder) Build() *model.ScheduledItem {
	item := b.item
	item.Participants = append([]string{}, b.item.Participants...)
	return &item
}

func AssertStatusCode(t *testing.T, resp *client.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d: %s", expected, resp.StatusCode, client.GetErrorMessage(resp))
	}
}

func AssertOK(t *testing.T, resp *client.Response) {
	t.Helper()
	AssertStatusCode(t, resp, http.StatusOK)
}
