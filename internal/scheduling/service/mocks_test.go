package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"darassa/internal/scheduling/events"
	"darassa/internal/scheduling/validator"
	"darassa/pkg/config"
	mongotx "darassa/pkg/db/mongo"
	"darassa/pkg/logger"
	"darassa/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	trainerT = "65f1a2b3c4d5e6f708091a01"
	trainerU = "65f1a2b3c4d5e6f708091a02"
	roomR    = "65f1a2b3c4d5e6f708091b01"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Log:               logger.Discard(),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		LockTTL:           10 * time.Second,
		CalendarTimeZone:  "UTC",
		CalendarMaxEvents: 500,
	}
}

func testValidator() *validator.ScheduledItemValidator {
	return validator.NewScheduledItemValidator(logger.Discard())
}

// memStore answers overlap queries the way the Mongo filter does.
type memStore struct {
	mu    sync.Mutex
	items []*model.ScheduledItem
	calls []model.OverlapQuery
}

func (m *memStore) FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.ScheduledItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, q)

	var out []*model.ScheduledItem
	for _, item := range m.items {
		if !slices.Contains(q.Kinds, item.Kind) || !item.Status.Occupies() {
			continue
		}
		held := item.TrainerID
		if q.Resource.Type == model.ResourceRoom {
			held = item.RoomID
		}
		if held != q.Resource.ID || item.ID == q.ExcludeID {
			continue
		}
		if item.StartTime.Before(q.Interval.End) && item.EndTime.After(q.Interval.Start) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memStore) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockOverlapFinder struct {
	findOverlappingFunc func(ctx context.Context, q model.OverlapQuery) ([]*model.ScheduledItem, error)
}

func (m *mockOverlapFinder) FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.ScheduledItem, error) {
	return m.findOverlappingFunc(ctx, q)
}

type mockScheduledItemRepository struct {
	createFunc          func(ctx context.Context, item *model.ScheduledItem) error
	findByIDFunc        func(ctx context.Context, id string) (*model.ScheduledItem, error)
	findAllFunc         func(ctx context.Context, kind model.Kind, limit int, offset int64) ([]*model.ScheduledItem, error)
	countFunc           func(ctx context.Context) (int64, error)
	countByKindFunc     func(ctx context.Context, kind model.Kind) (int64, error)
	updateFunc          func(ctx context.Context, id string, item *model.ScheduledItem) error
	deleteFunc          func(ctx context.Context, id string) error
	findOverlappingFunc func(ctx context.Context, q model.OverlapQuery) ([]*model.ScheduledItem, error)
	findForCalendarFunc func(ctx context.Context, f model.CalendarFilter) ([]*model.ScheduledItem, error)
}

func (m *mockScheduledItemRepository) Create(ctx context.Context, item *model.ScheduledItem) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	item.ID = "65f1a2b3c4d5e6f708091c99"
	return nil
}

func (m *mockScheduledItemRepository) FindByID(ctx context.Context, id string) (*model.ScheduledItem, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockScheduledItemRepository) FindAll(ctx context.Context, kind model.Kind, limit int, offset int64) ([]*model.ScheduledItem, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, kind, limit, offset)
	}
	return []*model.ScheduledItem{}, nil
}

func (m *mockScheduledItemRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockScheduledItemRepository) CountByKind(ctx context.Context, kind model.Kind) (int64, error) {
	if m.countByKindFunc != nil {
		return m.countByKindFunc(ctx, kind)
	}
	return 0, nil
}

func (m *mockScheduledItemRepository) Update(ctx context.Context, id string, item *model.ScheduledItem) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, item)
	}
	return nil
}

func (m *mockScheduledItemRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockScheduledItemRepository) FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.ScheduledItem, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, q)
	}
	return nil, nil
}

func (m *mockScheduledItemRepository) FindForCalendar(ctx context.Context, f model.CalendarFilter) ([]*model.ScheduledItem, error) {
	if m.findForCalendarFunc != nil {
		return m.findForCalendarFunc(ctx, f)
	}
	return nil, nil
}

// ExecuteTransaction runs fn without a real session.
func (m *mockScheduledItemRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLockRepository struct {
	mu          sync.Mutex
	held        map[string]string
	acquireFunc func(ctx context.Context, lock *model.ResourceLock) error
	released    []string
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{held: map[string]string{}}
}

func (m *mockLockRepository) Acquire(ctx context.Context, lock *model.ResourceLock) error {
	if m.acquireFunc != nil {
		if err := m.acquireFunc(ctx, lock); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[lock.ID] = lock.Owner
	return nil
}

func (m *mockLockRepository) Release(ctx context.Context, lock *model.ResourceLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[lock.ID] == lock.Owner {
		delete(m.held, lock.ID)
	}
	m.released = append(m.released, lock.ID)
	return nil
}

type mockChecker struct {
	checkFunc func(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error)
}

func (m *mockChecker) CheckAvailability(ctx context.Context, q model.AvailabilityQuery) (*model.AvailabilityResult, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, q)
	}
	return &model.AvailabilityResult{Available: true, Conflicts: model.NewConflicts()}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ItemEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.ItemEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}
