package model

import "time"

// AvailabilityQuery asks whether a trainer, and optionally a room, is free
// for [StartTime, EndTime). Field names in validation errors follow the
// HTTP body.
type AvailabilityQuery struct {
	StartTime time.Time `json:"startDate" validate:"required"`
	EndTime   time.Time `json:"endDate" validate:"required"`
	TrainerID string    `json:"formateurId" validate:"required,mongodb"`
	RoomID    string    `json:"salleId,omitempty" validate:"omitempty,mongodb"`
	// ExcludeID skips one item, so an update does not conflict with itself.
	ExcludeID string `json:"-" validate:"omitempty,mongodb"`
}

func (q AvailabilityQuery) Interval() Interval {
	return Interval{Start: q.StartTime, End: q.EndTime}
}

type Conflicts struct {
	Formations []*ScheduledItem `json:"formations"`
	Sessions   []*ScheduledItem `json:"sessions"`
	Rooms      []*ScheduledItem `json:"salles"`
}

func NewConflicts() Conflicts {
	return Conflicts{
		Formations: []*ScheduledItem{},
		Sessions:   []*ScheduledItem{},
		Rooms:      []*ScheduledItem{},
	}
}

func (c Conflicts) Empty() bool {
	return len(c.Formations) == 0 && len(c.Sessions) == 0 && len(c.Rooms) == 0
}

func (c Conflicts) Count() int {
	return len(c.Formations) + len(c.Sessions) + len(c.Rooms)
}

type AvailabilityResult struct {
	Available bool      `json:"available"`
	Conflicts Conflicts `json:"conflicts"`
}

// OverlapQuery is the typed shape of every conflict lookup against the store.
type OverlapQuery struct {
	Kinds     []Kind
	Resource  ResourceRef
	Interval  Interval
	ExcludeID string
}
