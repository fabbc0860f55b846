package mongo

import (
	"context"
	"fmt"

	"darassa/internal/migrations/mongo/validators"
	"darassa/internal/scheduling/repository"
	"darassa/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// The per-resource compound indexes serve the overlap lookups: equality
	// on kind and resource, then the two range bounds.
	ScheduledItemsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "trainer_id", Value: 1},
				{Key: "kind", Value: 1},
				{Key: "start_time", Value: 1},
				{Key: "end_time", Value: 1},
			},
			Options: options.Index().SetName("trainer_overlap"),
		},
		{
			Keys: bson.D{
				{Key: "room_id", Value: 1},
				{Key: "kind", Value: 1},
				{Key: "start_time", Value: 1},
				{Key: "end_time", Value: 1},
			},
			Options: options.Index().SetName("room_overlap"),
		},
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("kind_created_at"),
		},
		{
			Keys:    bson.D{{Key: "start_time", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("calendar_window"),
		},
		{
			Keys:    bson.D{{Key: "formation_type_id", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetName("formation_type_start"),
		},
	}

	// A zero TTL expires each lock at its own expires_at.
	ResourceLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() map[string]collectionDef {
	return map[string]collectionDef{
		repository.CollectionName: {
			Indexes:   ScheduledItemsIndexes,
			Validator: validators.ScheduledItemValidator,
		},
		repository.LockCollectionName: {
			Indexes:   ResourceLocksIndexes,
			Validator: validators.ResourceLockValidator,
		},
	}
}

// RunMigration creates or updates every collection with its JSON-schema
// validator and indexes. It is safe to run repeatedly.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
