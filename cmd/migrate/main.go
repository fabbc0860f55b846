package main

import (
	"context"
	"time"

	mongoMigration "darassa/internal/migrations/mongo"
	"darassa/pkg/client"
	"darassa/pkg/config"
)

const (
	JobName          = "mongo-migration"
	migrationTimeout = 120 * time.Second
)

func main() {
	cfg := config.Load(JobName)
	cfg.Log.Info("Starting Mongo migration job")

	if err := migrateMongo(cfg); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrateMongo(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	c := client.NewClient(cfg.Log)
	c.SetMongo(cfg.MongoURI, cfg.MongoConnTimeout)
	defer c.GracefulShutdown(context.WithoutCancel(ctx))

	return mongoMigration.RunMigration(ctx, c.Mongo.Database(cfg.MongoDatabaseName), cfg.Log)
}
