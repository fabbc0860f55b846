package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	schedulingerrors "darassa/internal/scheduling/errors"
	"darassa/internal/scheduling/events"
	"darassa/internal/scheduling/repository"
	"darassa/internal/scheduling/validator"
	"darassa/pkg/config"
	apperrors "darassa/pkg/errors"
	"darassa/pkg/model"
	"darassa/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

type ScheduledItemService interface {
	Create(ctx context.Context, item *model.ScheduledItem) error
	GetByID(ctx context.Context, id string) (*model.ScheduledItem, error)
	List(ctx context.Context, kind model.Kind, limit int, offset int64) ([]*model.ScheduledItem, int64, error)
	Update(ctx context.Context, id string, updates *model.ScheduledItemUpdate) (*model.ScheduledItem, error)
	Delete(ctx context.Context, id string) error
}

type scheduledItemService struct {
	repo      repository.ScheduledItemRepository
	lockRepo  repository.ResourceLockRepository
	checker   AvailabilityChecker
	validator *validator.ScheduledItemValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewScheduledItemService(
	repo repository.ScheduledItemRepository,
	lockRepo repository.ResourceLockRepository,
	checker AvailabilityChecker,
	validator *validator.ScheduledItemValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ScheduledItemService {
	return &scheduledItemService{
		repo:      repo,
		lockRepo:  lockRepo,
		checker:   checker,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Create stores item only if none of its resources is taken for its
// interval. The per-resource locks serialize concurrent writers, and the
// check and insert share one transaction.
func (s *scheduledItemService) Create(ctx context.Context, item *model.ScheduledItem) error {
	s.applyDefaults(item)
	s.sanitize(item)
	if err := s.validate(ctx, item); err != nil {
		return err
	}

	locks, err := s.acquireLocks(ctx, item.Resources())
	if err != nil {
		return err
	}
	defer s.releaseLocks(ctx, locks)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ensureAvailable(sessCtx, item, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, item); err != nil {
			return apperrors.Internal("Failed to create scheduled item", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to create scheduled item", "kind", item.Kind, "error", err)
		return err
	}

	s.cfg.Log.WithContext(ctx).Info("Scheduled item created successfully",
		"id", item.ID,
		"kind", item.Kind,
		"trainer_id", item.TrainerID,
		"room_id", item.RoomID,
		"start_time", item.StartTime,
		"end_time", item.EndTime,
	)
	s.publish(ctx, events.ItemCreated, item.ID, item)
	return nil
}

func (s *scheduledItemService) GetByID(ctx context.Context, id string) (*model.ScheduledItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("Scheduled item ID cannot be empty")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err, id, "Failed to retrieve scheduled item")
	}
	return item, nil
}

// List pages through one kind, or every kind when kind is empty. The page
// and the total are fetched concurrently.
func (s *scheduledItemService) List(ctx context.Context, kind model.Kind, limit int, offset int64) ([]*model.ScheduledItem, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count int64
		items []*model.ScheduledItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if kind == "" {
			count, err = s.repo.Count(gctx)
		} else {
			count, err = s.repo.CountByKind(gctx, kind)
		}
		if err != nil {
			s.cfg.Log.WithContext(ctx).Error("Failed to count scheduled items", "kind", kind, "error", err)
			return apperrors.Internal("Failed to count scheduled items", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.FindAll(gctx, kind, limit, offset)
		if err != nil {
			s.cfg.Log.WithContext(ctx).Error("Failed to list scheduled items",
				"kind", kind,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve scheduled items", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (s *scheduledItemService) Update(ctx context.Context, id string, updates *model.ScheduledItemUpdate) (*model.ScheduledItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("Scheduled item ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err, id, "Failed to check scheduled item existence")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Scheduled item update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(ctx, merged); err != nil {
		return nil, err
	}

	locks, err := s.acquireLocks(ctx, merged.Resources())
	if err != nil {
		return nil, err
	}
	defer s.releaseLocks(ctx, locks)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ensureAvailable(sessCtx, merged, id); err != nil {
			return err
		}
		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			return s.mapRepoError(ctx, err, id, "Failed to update scheduled item")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to update scheduled item", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.WithContext(ctx).Info("Scheduled item updated successfully", "id", id)
	s.publish(ctx, events.ItemUpdated, id, merged)
	return merged, nil
}

func (s *scheduledItemService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.InvalidInput("Scheduled item ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(ctx, err, id, "Failed to delete scheduled item")
	}

	s.cfg.Log.WithContext(ctx).Info("Scheduled item deleted successfully", "id", id)
	s.publish(ctx, events.ItemDeleted, id, nil)
	return nil
}

// --- Helpers ---

// ensureAvailable runs the availability check for item's own interval and
// resources. Cancelled items claim nothing and are never blocked.
func (s *scheduledItemService) ensureAvailable(ctx context.Context, item *model.ScheduledItem, excludeID string) error {
	if !item.Status.Occupies() {
		return nil
	}

	result, err := s.checker.CheckAvailability(ctx, model.AvailabilityQuery{
		StartTime: item.StartTime,
		EndTime:   item.EndTime,
		TrainerID: item.TrainerID,
		RoomID:    item.RoomID,
		ExcludeID: excludeID,
	})
	if err != nil {
		return err
	}
	if !result.Available {
		return apperrors.Conflict(fmt.Sprintf(
			"%s overlaps %d existing booking(s) between %s and %s",
			item.Kind,
			result.Conflicts.Count(),
			item.StartTime.Format(time.RFC3339),
			item.EndTime.Format(time.RFC3339),
		)).WithDetails(map[string]any{"conflicts": result.Conflicts})
	}
	return nil
}

// acquireLocks takes one lock per resource in a stable order. On failure the
// locks already taken are released before returning.
func (s *scheduledItemService) acquireLocks(ctx context.Context, refs []model.ResourceRef) ([]*model.ResourceLock, error) {
	owner := uuid.NewString()
	expiresAt := time.Now().UTC().Add(s.cfg.LockTTL)

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, model.LockID(ref))
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	locks := make([]*model.ResourceLock, 0, len(ids))
	for _, id := range ids {
		lock := &model.ResourceLock{ID: id, Owner: owner, ExpiresAt: expiresAt}
		if err := s.lockRepo.Acquire(ctx, lock); err != nil {
			s.releaseLocks(ctx, locks)
			if errors.Is(err, schedulingerrors.ErrLockHeld) {
				s.cfg.Log.WithContext(ctx).Warn("Resource lock contention", "lock_id", id)
				return nil, apperrors.Conflict("This resource is currently being booked by another request. Please try again.").
					WithDetails(map[string]any{apperrors.DetailRetryable: true})
			}
			return nil, apperrors.Transient("Failed to acquire resource lock", err)
		}
		locks = append(locks, lock)
	}
	return locks, nil
}

func (s *scheduledItemService) releaseLocks(ctx context.Context, locks []*model.ResourceLock) {
	ctx = context.WithoutCancel(ctx)
	for _, lock := range locks {
		if err := s.lockRepo.Release(ctx, lock); err != nil {
			s.cfg.Log.WithContext(ctx).Warn("Failed to release resource lock", "lock_id", lock.ID, "error", err)
		}
	}
}

// publish never fails the write that triggered it.
func (s *scheduledItemService) publish(ctx context.Context, eventType events.EventType, id string, item *model.ScheduledItem) {
	event := events.ItemEvent{Type: eventType, ItemID: id, Item: item, OccurredAt: time.Now().UTC()}
	if item != nil {
		event.Kind = item.Kind
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Failed to publish scheduled item event", "type", eventType, "id", id, "error", err)
	}
}

func (s *scheduledItemService) mapRepoError(ctx context.Context, err error, id, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, schedulingerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Scheduled item", id)
	case errors.Is(err, schedulingerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid scheduled item ID format")
	default:
		s.cfg.Log.WithContext(ctx).Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *scheduledItemService) sanitize(item *model.ScheduledItem) {
	item.Title = sanitizer.NormalizeTitle(item.Title)
	item.Description = strings.TrimSpace(item.Description)
	item.TrainerID = sanitizer.NormalizeID(item.TrainerID)
	item.TrainerName = sanitizer.TrimAndNormalize(item.TrainerName)
	item.RoomID = sanitizer.NormalizeID(item.RoomID)
	item.Location = sanitizer.TrimAndNormalize(item.Location)
	item.FormationTypeID = sanitizer.NormalizeID(item.FormationTypeID)
	item.Participants = sanitizer.NormalizeIDs(item.Participants)
	item.TimeZone = strings.TrimSpace(item.TimeZone)
	item.StartTime = item.StartTime.UTC().Truncate(time.Millisecond)
	item.EndTime = item.EndTime.UTC().Truncate(time.Millisecond)
}

func (s *scheduledItemService) applyDefaults(item *model.ScheduledItem) {
	if item.Status == "" {
		item.Status = model.StatusPlanned
	}
	if item.Participants == nil {
		item.Participants = []string{}
	}
}

func (s *scheduledItemService) mergeUpdates(existing *model.ScheduledItem, updates *model.ScheduledItemUpdate) *model.ScheduledItem {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.TrainerID != "" {
		merged.TrainerID = updates.TrainerID
	}
	if updates.TrainerName != "" {
		merged.TrainerName = updates.TrainerName
	}
	if updates.RoomID != nil {
		merged.RoomID = *updates.RoomID
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.FormationTypeID != "" {
		merged.FormationTypeID = updates.FormationTypeID
	}
	if updates.Participants != nil {
		merged.Participants = *updates.Participants
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}

	return &merged
}

func (s *scheduledItemService) validate(ctx context.Context, item *model.ScheduledItem) error {
	if err := s.validator.Validate(item); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Scheduled item validation failed", "error", err)
		return validationError("Scheduled item validation failed", err)
	}
	return nil
}
