package repository

import (
	"regexp"

	"darassa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// notCancelled keeps only items that still occupy their resources.
var notCancelled = bson.M{"$ne": model.StatusCancelled}

// overlapFilter is the store-side shape of Interval.Overlaps:
// existing.start < q.end AND existing.end > q.start.
func overlapFilter(q model.OverlapQuery) bson.M {
	kinds := make([]string, 0, len(q.Kinds))
	for _, k := range q.Kinds {
		kinds = append(kinds, string(k))
	}

	filter := bson.M{
		"kind":                  bson.M{"$in": kinds},
		q.Resource.Type.Field(): q.Resource.ID,
		"start_time":            bson.M{"$lt": q.Interval.End},
		"end_time":              bson.M{"$gt": q.Interval.Start},
		"status":                notCancelled,
	}

	if q.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(q.ExcludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	return filter
}

// calendarFilter builds the query for the calendar projection. Each bound of
// the window is optional; an item is returned when it overlaps the window.
func calendarFilter(f model.CalendarFilter) bson.M {
	filter := bson.M{}

	if f.EndDate != nil {
		filter["start_time"] = bson.M{"$lt": *f.EndDate}
	}
	if f.StartDate != nil {
		filter["end_time"] = bson.M{"$gt": *f.StartDate}
	}
	if f.TrainerID != "" {
		filter["trainer_id"] = f.TrainerID
	}
	if f.FormationTypeID != "" {
		filter["formation_type_id"] = f.FormationTypeID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.SearchTerm != "" {
		pattern := regexp.QuoteMeta(f.SearchTerm)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return filter
}
