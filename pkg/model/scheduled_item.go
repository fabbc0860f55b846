package model

import "time"

// Kind tags a scheduled item. It does not change conflict semantics.
type Kind string

const (
	KindFormation Kind = "formation"
	KindSession   Kind = "session"
	KindEvent     Kind = "event"
)

var Kinds = []Kind{KindFormation, KindSession, KindEvent}

func (k Kind) Valid() bool {
	switch k {
	case KindFormation, KindSession, KindEvent:
		return true
	}
	return false
}

// Plural is the collection-style name used in routes and conflict lists.
func (k Kind) Plural() string {
	return string(k) + "s"
}

func KindFromPlural(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Plural() == s {
			return k, true
		}
	}
	return "", false
}

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Occupies reports whether an item in this status still holds its resources.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

// ScheduledItem is a formation, session or event occupying a trainer and,
// optionally, a room for [StartTime, EndTime).
type ScheduledItem struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Kind            Kind      `json:"kind" bson:"kind" validate:"required,oneof=formation session event"`
	Title           string    `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description     string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	TrainerID       string    `json:"trainer_id" bson:"trainer_id" validate:"required,mongodb"`
	TrainerName     string    `json:"trainer_name,omitempty" bson:"trainer_name,omitempty" validate:"omitempty,max=200"`
	RoomID          string    `json:"room_id,omitempty" bson:"room_id,omitempty" validate:"omitempty,mongodb"`
	Location        string    `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	FormationTypeID string    `json:"formation_type_id,omitempty" bson:"formation_type_id,omitempty" validate:"omitempty,mongodb"`
	Participants    []string  `json:"participants" bson:"participants" validate:"omitempty,max=500,dive,mongodb"`
	Status          Status    `json:"status" bson:"status" validate:"required,oneof=planned confirmed cancelled completed"`
	StartTime       time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" bson:"end_time" validate:"required"`
	TimeZone        string    `json:"time_zone,omitempty" bson:"time_zone,omitempty" validate:"omitempty,timezone"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

func (s *ScheduledItem) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// Resources lists the resource references the item occupies.
func (s *ScheduledItem) Resources() []ResourceRef {
	refs := []ResourceRef{{Type: ResourceTrainer, ID: s.TrainerID}}
	if s.RoomID != "" {
		refs = append(refs, ResourceRef{Type: ResourceRoom, ID: s.RoomID})
	}
	return refs
}

type ScheduledItemUpdate struct {
	Title           string     `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	TrainerID       string     `json:"trainer_id,omitempty" validate:"omitempty,mongodb"`
	TrainerName     string     `json:"trainer_name,omitempty" validate:"omitempty,max=200"`
	RoomID          *string    `json:"room_id,omitempty" validate:"omitempty"`
	Location        *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	FormationTypeID string     `json:"formation_type_id,omitempty" validate:"omitempty,mongodb"`
	Participants    *[]string  `json:"participants,omitempty" validate:"omitempty,max=500,dive,mongodb"`
	Status          Status     `json:"status,omitempty" validate:"omitempty,oneof=planned confirmed cancelled completed"`
	StartTime       *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	TimeZone        string     `json:"time_zone,omitempty" validate:"omitempty,timezone"`
}

type ResourceType string

const (
	ResourceTrainer ResourceType = "trainer"
	ResourceRoom    ResourceType = "room"
)

// Field is the document field holding this resource reference.
func (r ResourceType) Field() string {
	switch r {
	case ResourceRoom:
		return "room_id"
	default:
		return "trainer_id"
	}
}

type ResourceRef struct {
	Type ResourceType
	ID   string
}
