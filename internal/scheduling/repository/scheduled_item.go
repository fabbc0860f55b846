package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	schedulingerrors "darassa/internal/scheduling/errors"
	"darassa/pkg/config"
	mongotx "darassa/pkg/db/mongo"
	"darassa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Scheduled_items"

	// maxOverlapResults bounds a single conflict lookup. One conflicting item
	// already makes the slot unavailable; the rest are for display.
	maxOverlapResults = 200
)

type ScheduledItemRepository interface {
	Create(ctx context.Context, item *model.ScheduledItem) error
	FindByID(ctx context.Context, id string) (*model.ScheduledItem, error)
	FindAll(ctx context.Context, kind model.Kind, limit int, offset int64) ([]*model.ScheduledItem, error)
	Count(ctx context.Context) (int64, error)
	CountByKind(ctx context.Context, kind model.Kind) (int64, error)
	Update(ctx context.Context, id string, item *model.ScheduledItem) error
	Delete(ctx context.Context, id string) error
	FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.ScheduledItem, error)
	FindForCalendar(ctx context.Context, f model.CalendarFilter) ([]*model.ScheduledItem, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoScheduledItemRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoScheduledItemRepository(client *mongo.Client, cfg *config.Config) ScheduledItemRepository {
	db := client.Database(cfg.MongoDatabaseName)
	return &mongoScheduledItemRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(client),
	}
}

func (r *mongoScheduledItemRepository) Create(ctx context.Context, item *model.ScheduledItem) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create scheduled item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduledItemRepository) FindByID(ctx context.Context, id string) (*model.ScheduledItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", schedulingerrors.ErrInvalidID, id)
	}

	var item model.ScheduledItem
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", schedulingerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find scheduled item: %w", err)
	}

	return &item, nil
}

func kindFilter(kind model.Kind) bson.M {
	if kind == "" {
		return bson.M{}
	}
	return bson.M{"kind": kind}
}

func (r *mongoScheduledItemRepository) FindAll(ctx context.Context, kind model.Kind, limit int, offset int64) ([]*model.ScheduledItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, kindFilter(kind), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.ScheduledItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled items: %w", err)
	}
	return items, nil
}

func (r *mongoScheduledItemRepository) Count(ctx context.Context) (int64, error) {
	return r.CountByKind(ctx, "")
}

func (r *mongoScheduledItemRepository) CountByKind(ctx context.Context, kind model.Kind) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, kindFilter(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to count scheduled items: %w", err)
	}
	return count, nil
}

func (r *mongoScheduledItemRepository) Update(ctx context.Context, id string, item *model.ScheduledItem) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", schedulingerrors.ErrInvalidID, id)
	}

	item.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"title":        item.Title,
		"description":  item.Description,
		"trainer_id":   item.TrainerID,
		"trainer_name": item.TrainerName,
		"location":     item.Location,
		"participants": item.Participants,
		"status":       item.Status,
		"start_time":   item.StartTime,
		"end_time":     item.EndTime,
		"time_zone":    item.TimeZone,
		"updated_at":   item.UpdatedAt,
	}
	// Optional references are removed rather than stored empty, matching
	// the omitempty shape of inserted documents.
	unset := bson.M{}
	setOrUnset(set, unset, "room_id", item.RoomID)
	setOrUnset(set, unset, "formation_type_id", item.FormationTypeID)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update scheduled item: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", schedulingerrors.ErrNotFound, id)
	}
	return nil
}

func setOrUnset(set, unset bson.M, field, value string) {
	if value == "" {
		unset[field] = ""
		return
	}
	set[field] = value
}

func (r *mongoScheduledItemRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", schedulingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete scheduled item: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", schedulingerrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoScheduledItemRepository) FindOverlapping(ctx context.Context, q model.OverlapQuery) ([]*model.ScheduledItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(maxOverlapResults)

	cursor, err := r.collection.Find(ctx, overlapFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping %s items: %w", q.Resource.Type, err)
	}
	defer cursor.Close(ctx)

	items := []*model.ScheduledItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping items: %w", err)
	}
	return items, nil
}

func (r *mongoScheduledItemRepository) FindForCalendar(ctx context.Context, f model.CalendarFilter) ([]*model.ScheduledItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cursor, err := r.collection.Find(ctx, calendarFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.ScheduledItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode calendar items: %w", err)
	}
	return items, nil
}

func (r *mongoScheduledItemRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
