package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	schedulingerrors "darassa/internal/scheduling/errors"
	"darassa/internal/scheduling/events"
	"darassa/internal/scheduling/repository"
	apperrors "darassa/pkg/errors"
	"darassa/pkg/model"
)

type fixture struct {
	repo      *mockScheduledItemRepository
	locks     *mockLockRepository
	checker   *mockChecker
	publisher *recordingPublisher
}

func newFixture() *fixture {
	return &fixture{
		repo:      &mockScheduledItemRepository{},
		locks:     newMockLockRepository(),
		checker:   &mockChecker{},
		publisher: &recordingPublisher{},
	}
}

func (f *fixture) service() ScheduledItemService {
	return NewScheduledItemService(f.repo, f.locks, f.checker, testValidator(), f.publisher, testConfig())
}

func validItem() *model.ScheduledItem {
	return &model.ScheduledItem{
		Kind:      model.KindSession,
		Title:     "  Kubernetes   in practice ",
		TrainerID: trainerT,
		RoomID:    roomR,
		StartTime: at(9, 0),
		EndTime:   at(11, 0),
	}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()
	var checked model.AvailabilityQuery
	f.checker.checkFunc = func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
		checked = q
		if len(f.locks.held) != 2 {
			t.Errorf("check must run while both locks are held, held=%v", f.locks.held)
		}
		return &model.AvailabilityResult{Available: true, Conflicts: model.NewConflicts()}, nil
	}

	item := validItem()
	if err := f.service().Create(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.ID == "" {
		t.Error("expected the repository to assign an ID")
	}
	if item.Title != "Kubernetes in practice" {
		t.Errorf("Title = %q, want sanitized title", item.Title)
	}
	if item.Status != model.StatusPlanned {
		t.Errorf("Status = %q, want planned by default", item.Status)
	}
	if item.Participants == nil {
		t.Error("Participants must default to an empty list")
	}
	if checked.TrainerID != trainerT || checked.RoomID != roomR || checked.ExcludeID != "" {
		t.Errorf("unexpected availability query: %+v", checked)
	}
	if len(f.locks.held) != 0 {
		t.Errorf("locks must be released, still held: %v", f.locks.held)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != events.ItemCreated {
		t.Fatalf("expected one created event, got %+v", f.publisher.events)
	}
	if f.publisher.events[0].ItemID != item.ID || f.publisher.events[0].Kind != model.KindSession {
		t.Errorf("unexpected event: %+v", f.publisher.events[0])
	}
}

func TestCreate_Conflict(t *testing.T) {
	f := newFixture()
	existing := session("65f1a2b3c4d5e6f708091c01", trainerT, "", at(10, 0), at(12, 0))
	f.checker.checkFunc = func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
		c := model.NewConflicts()
		c.Sessions = append(c.Sessions, existing)
		return &model.AvailabilityResult{Available: false, Conflicts: c}, nil
	}
	f.repo.createFunc = func(ctx context.Context, item *model.ScheduledItem) error {
		t.Fatal("a conflicting item must not be stored")
		return nil
	}

	err := f.service().Create(context.Background(), validItem())

	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	conflicts, ok := appErr.Details["conflicts"].(model.Conflicts)
	if !ok || len(conflicts.Sessions) != 1 {
		t.Errorf("conflicts must be reported in details, got %v", appErr.Details)
	}
	if len(f.publisher.events) != 0 {
		t.Error("no event may be published for a rejected write")
	}
	if len(f.locks.held) != 0 {
		t.Errorf("locks must be released after a conflict, still held: %v", f.locks.held)
	}
}

func TestCreate_LockContention(t *testing.T) {
	f := newFixture()
	f.locks.acquireFunc = func(ctx context.Context, lock *model.ResourceLock) error {
		if lock.ID == model.LockID(model.ResourceRef{Type: model.ResourceTrainer, ID: trainerT}) {
			return schedulingerrors.ErrLockHeld
		}
		return nil
	}
	f.checker.checkFunc = func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
		t.Fatal("availability must not be checked without the locks")
		return nil, nil
	}

	err := f.service().Create(context.Background(), validItem())

	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != http.StatusConflict || !appErr.Retryable() {
		t.Errorf("expected a retryable 409, got %v", err)
	}
	if len(f.locks.held) != 0 {
		t.Errorf("partially acquired locks must be released, still held: %v", f.locks.held)
	}
}

func TestCreate_LockStoreFailure(t *testing.T) {
	f := newFixture()
	f.locks.acquireFunc = func(ctx context.Context, lock *model.ResourceLock) error {
		return errors.New("no reachable servers")
	}

	err := f.service().Create(context.Background(), validItem())
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() != http.StatusInternalServerError || !appErr.Retryable() {
		t.Errorf("expected a retryable 500, got %v", err)
	}
}

func TestCreate_LocksTakenInStableOrder(t *testing.T) {
	f := newFixture()
	var order []string
	f.locks.acquireFunc = func(ctx context.Context, lock *model.ResourceLock) error {
		order = append(order, lock.ID)
		if !lock.ExpiresAt.After(time.Now()) {
			t.Errorf("lock %s already expired", lock.ID)
		}
		return nil
	}

	if err := f.service().Create(context.Background(), validItem()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] > order[1] {
		t.Errorf("locks must be acquired in sorted order, got %v", order)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.ScheduledItem)
	}{
		{"inverted interval", func(i *model.ScheduledItem) { i.StartTime, i.EndTime = at(11, 0), at(9, 0) }},
		{"missing trainer", func(i *model.ScheduledItem) { i.TrainerID = "" }},
		{"unknown kind", func(i *model.ScheduledItem) { i.Kind = "webinar" }},
		{"short title", func(i *model.ScheduledItem) { i.Title = "x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.locks.acquireFunc = func(ctx context.Context, lock *model.ResourceLock) error {
				t.Fatal("invalid items must not take locks")
				return nil
			}
			item := validItem()
			tt.mutate(item)

			err := f.service().Create(context.Background(), item)
			if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestCreate_CancelledSkipsCheck(t *testing.T) {
	f := newFixture()
	f.checker.checkFunc = func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
		t.Fatal("cancelled items claim nothing")
		return nil, nil
	}

	item := validItem()
	item.Status = model.StatusCancelled
	if err := f.service().Create(context.Background(), item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	if err := f.service().Create(context.Background(), validItem()); err != nil {
		t.Errorf("publish failure must not fail the write, got %v", err)
	}
}

func TestUpdate_ExcludesItself(t *testing.T) {
	f := newFixture()
	id := "65f1a2b3c4d5e6f708091c01"
	existing := session(id, trainerT, roomR, at(9, 0), at(11, 0))
	f.repo.findByIDFunc = func(ctx context.Context, got string) (*model.ScheduledItem, error) {
		return existing, nil
	}
	f.checker.checkFunc = func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
		if q.ExcludeID != id {
			t.Errorf("ExcludeID = %q, want %q", q.ExcludeID, id)
		}
		if !q.EndTime.Equal(at(12, 0)) {
			t.Errorf("check must use the merged interval, got end %v", q.EndTime)
		}
		return &model.AvailabilityResult{Available: true, Conflicts: model.NewConflicts()}, nil
	}

	end := at(12, 0)
	updated, err := f.service().Update(context.Background(), id, &model.ScheduledItemUpdate{EndTime: &end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.EndTime.Equal(end) || !updated.StartTime.Equal(at(9, 0)) {
		t.Errorf("unexpected merged interval: %v - %v", updated.StartTime, updated.EndTime)
	}
	if !existing.EndTime.Equal(at(11, 0)) {
		t.Error("the stored item must not be mutated in place")
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != events.ItemUpdated {
		t.Errorf("expected one updated event, got %+v", f.publisher.events)
	}
}

func TestUpdate_ClearRoom(t *testing.T) {
	f := newFixture()
	id := "65f1a2b3c4d5e6f708091c01"
	f.repo.findByIDFunc = func(ctx context.Context, got string) (*model.ScheduledItem, error) {
		return session(id, trainerT, roomR, at(9, 0), at(11, 0)), nil
	}
	var lockIDs []string
	f.locks.acquireFunc = func(ctx context.Context, lock *model.ResourceLock) error {
		lockIDs = append(lockIDs, lock.ID)
		return nil
	}

	noRoom := ""
	updated, err := f.service().Update(context.Background(), id, &model.ScheduledItemUpdate{RoomID: &noRoom})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.RoomID != "" {
		t.Errorf("RoomID = %q, want cleared", updated.RoomID)
	}
	if len(lockIDs) != 1 {
		t.Errorf("only the trainer should be locked, got %v", lockIDs)
	}
}

func TestUpdate_InvalidMergedInterval(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.ScheduledItem, error) {
		return session(id, trainerT, "", at(9, 0), at(11, 0)), nil
	}

	start := at(11, 30)
	_, err := f.service().Update(context.Background(), "65f1a2b3c4d5e6f708091c01", &model.ScheduledItemUpdate{StartTime: &start})
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("a start after the stored end must be rejected, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.ScheduledItem, error) {
		return nil, schedulingerrors.ErrNotFound
	}

	title := "New title"
	_, err := f.service().Update(context.Background(), "65f1a2b3c4d5e6f708091c01", &model.ScheduledItemUpdate{Title: title})
	if apperrors.AsAppError(err).StatusCode() != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		wantStatus int
	}{
		{"not found", schedulingerrors.ErrNotFound, http.StatusNotFound},
		{"invalid id", schedulingerrors.ErrInvalidID, http.StatusBadRequest},
		{"store failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.ScheduledItem, error) {
				return nil, tt.repoErr
			}
			_, err := f.service().GetByID(context.Background(), "abc")
			if got := apperrors.AsAppError(err).StatusCode(); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestGetByID_EmptyID(t *testing.T) {
	_, err := newFixture().service().GetByID(context.Background(), "  ")
	if apperrors.AsAppError(err).StatusCode() != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestList(t *testing.T) {
	f := newFixture()
	var gotKind model.Kind
	var gotLimit int
	f.repo.countByKindFunc = func(ctx context.Context, kind model.Kind) (int64, error) {
		return 42, nil
	}
	f.repo.countFunc = func(ctx context.Context) (int64, error) {
		t.Error("a kind-scoped list must count only that kind")
		return 0, nil
	}
	f.repo.findAllFunc = func(ctx context.Context, kind model.Kind, limit int, offset int64) ([]*model.ScheduledItem, error) {
		gotKind, gotLimit = kind, limit
		return []*model.ScheduledItem{session("a", trainerT, "", at(9, 0), at(10, 0))}, nil
	}

	items, total, err := f.service().List(context.Background(), model.KindFormation, 0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 || len(items) != 1 {
		t.Errorf("got %d items, total %d", len(items), total)
	}
	if gotKind != model.KindFormation || gotLimit != 10 {
		t.Errorf("kind/limit = %s/%d, want formation/10", gotKind, gotLimit)
	}
}

func TestList_AllKinds(t *testing.T) {
	f := newFixture()
	counted := false
	f.repo.countFunc = func(ctx context.Context) (int64, error) {
		counted = true
		return 3, nil
	}

	_, total, err := f.service().List(context.Background(), "", 10, 0)
	if err != nil || !counted || total != 3 {
		t.Errorf("expected the unscoped count, got total=%d err=%v", total, err)
	}
}

func TestList_CountFailure(t *testing.T) {
	f := newFixture()
	f.repo.countByKindFunc = func(ctx context.Context, kind model.Kind) (int64, error) {
		return 0, errors.New("boom")
	}

	_, _, err := f.service().List(context.Background(), model.KindEvent, 10, 0)
	if apperrors.AsAppError(err).StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture()
	id := "65f1a2b3c4d5e6f708091c01"

	if err := f.service().Delete(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Type != events.ItemDeleted || f.publisher.events[0].ItemID != id {
		t.Errorf("expected one deleted event, got %+v", f.publisher.events)
	}

	f.repo.deleteFunc = func(ctx context.Context, id string) error {
		return schedulingerrors.ErrNotFound
	}
	if err := f.service().Delete(context.Background(), id); apperrors.AsAppError(err).StatusCode() != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

var _ repository.ScheduledItemRepository = (*mockScheduledItemRepository)(nil)
var _ repository.ResourceLockRepository = (*mockLockRepository)(nil)
