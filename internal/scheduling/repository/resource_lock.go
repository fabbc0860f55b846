package repository

import (
	"context"
	"fmt"
	"time"

	schedulingerrors "darassa/internal/scheduling/errors"
	"darassa/pkg/config"
	mongotx "darassa/pkg/db/mongo"
	"darassa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Resource_locks"

// ResourceLockRepository provides short-lived advisory locks keyed by resource.
type ResourceLockRepository interface {
	Acquire(ctx context.Context, lock *model.ResourceLock) error
	Release(ctx context.Context, lock *model.ResourceLock) error
}

type mongoResourceLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResourceLockRepository(client *mongo.Client, cfg *config.Config) ResourceLockRepository {
	return &mongoResourceLockRepository{
		cfg:        cfg,
		collection: client.Database(cfg.MongoDatabaseName).Collection(LockCollectionName),
	}
}

// Acquire inserts the lock document. A duplicate key means another writer
// holds it; a lock past its expiry is taken over once, since the TTL monitor
// only sweeps about once a minute.
func (r *mongoResourceLockRepository) Acquire(ctx context.Context, lock *model.ResourceLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to acquire lock %s: %w", lock.ID, err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lock.ID,
		"expires_at": bson.M{"$lte": lock.CreatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to clear expired lock %s: %w", lock.ID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", schedulingerrors.ErrLockHeld, lock.ID)
	}

	if _, err = r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", schedulingerrors.ErrLockHeld, lock.ID)
		}
		return fmt.Errorf("failed to acquire lock %s: %w", lock.ID, err)
	}
	return nil
}

// Release deletes the lock only while it still belongs to its owner.
func (r *mongoResourceLockRepository) Release(ctx context.Context, lock *model.ResourceLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "owner": lock.Owner})
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", lock.ID, err)
	}
	return nil
}
