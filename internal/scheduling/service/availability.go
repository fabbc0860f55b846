package service

import (
	"context"

	"darassa/internal/scheduling/validator"
	"darassa/pkg/config"
	mongotx "darassa/pkg/db/mongo"
	apperrors "darassa/pkg/errors"
	"darassa/pkg/model"

	"golang.org/x/sync/errgroup"
)

// OverlapFinder is the single store query the checker depends on.
type OverlapFinder interface {
	FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.ScheduledItem, error)
}

type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error)
}

type availabilityChecker struct {
	store     OverlapFinder
	validator *validator.ScheduledItemValidator
	cfg       *config.Config
}

func NewAvailabilityChecker(store OverlapFinder, v *validator.ScheduledItemValidator, cfg *config.Config) AvailabilityChecker {
	return &availabilityChecker{
		store:     store,
		validator: v,
		cfg:       cfg,
	}
}

// lookup is one conflict query and the list its hits are reported in.
type lookup struct {
	query model.OverlapQuery
	dest  *[]*model.ScheduledItem
}

// CheckAvailability reports whether the trainer, and the room when given,
// are free for the query interval. It never writes. Any store failure fails
// the whole check: a partial answer is never reported as available.
func (c *availabilityChecker) CheckAvailability(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
	if err := c.validator.ValidateAvailabilityQuery(&q); err != nil {
		c.cfg.Log.WithContext(ctx).Warn("Availability query validation failed", "error", err)
		return nil, validationError("Invalid availability query", err)
	}

	interval := q.Interval()
	conflicts := model.NewConflicts()
	lookups := c.plan(q, interval, &conflicts)

	g, gctx := errgroup.WithContext(ctx)
	if mongotx.InTransaction(ctx) {
		g.SetLimit(1)
	}

	results := make([][]*model.ScheduledItem, len(lookups))
	for i, l := range lookups {
		g.Go(func() error {
			items, err := c.store.FindOverlapping(gctx, l.query)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.cfg.Log.WithContext(ctx).Error("Availability check failed",
			"trainer_id", q.TrainerID,
			"room_id", q.RoomID,
			"start_time", q.StartTime,
			"end_time", q.EndTime,
			"error", err,
		)
		return nil, apperrors.Transient("Unable to confirm availability", err)
	}

	for i, l := range lookups {
		*l.dest = append(*l.dest, keepConflicting(results[i], interval, q.ExcludeID)...)
	}

	result := &model.AvailabilityResult{
		Available: conflicts.Empty(),
		Conflicts: conflicts,
	}

	c.cfg.Log.WithContext(ctx).Debug("Availability checked",
		"trainer_id", q.TrainerID,
		"room_id", q.RoomID,
		"available", result.Available,
		"conflicts", conflicts.Count(),
	)
	return result, nil
}

func (c *availabilityChecker) plan(q model.AvailabilityQuery, interval model.Interval, conflicts *model.Conflicts) []lookup {
	trainer := model.ResourceRef{Type: model.ResourceTrainer, ID: q.TrainerID}

	lookups := []lookup{
		{
			query: model.OverlapQuery{
				Kinds:     []model.Kind{model.KindFormation},
				Resource:  trainer,
				Interval:  interval,
				ExcludeID: q.ExcludeID,
			},
			dest: &conflicts.Formations,
		},
		{
			query: model.OverlapQuery{
				Kinds:     []model.Kind{model.KindSession},
				Resource:  trainer,
				Interval:  interval,
				ExcludeID: q.ExcludeID,
			},
			dest: &conflicts.Sessions,
		},
	}

	if q.RoomID != "" {
		lookups = append(lookups, lookup{
			query: model.OverlapQuery{
				Kinds:     []model.Kind{model.KindSession, model.KindEvent},
				Resource:  model.ResourceRef{Type: model.ResourceRoom, ID: q.RoomID},
				Interval:  interval,
				ExcludeID: q.ExcludeID,
			},
			dest: &conflicts.Rooms,
		})
	}

	return lookups
}

// keepConflicting re-applies Interval.Overlaps to store results so the
// predicate, not the query shape, decides what counts as a conflict.
func keepConflicting(items []*model.ScheduledItem, interval model.Interval, excludeID string) []*model.ScheduledItem {
	kept := make([]*model.ScheduledItem, 0, len(items))
	for _, item := range items {
		if item == nil || (excludeID != "" && item.ID == excludeID) {
			continue
		}
		if !item.Status.Occupies() {
			continue
		}
		if item.Interval().Overlaps(interval) {
			kept = append(kept, item)
		}
	}
	return kept
}
