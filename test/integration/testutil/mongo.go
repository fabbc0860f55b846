package testutil

import (
	"context"
	"testing"
	"time"

	"darassa/internal/scheduling/repository"
	"darassa/pkg/client"
	"darassa/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "darassa_test"
	ConnectionTimeout   = 10 * time.Second

	ScheduledItemsCollection = repository.CollectionName
	ResourceLocksCollection  = repository.LockCollectionName
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	c, err := client.ConnectMongo(mongoURI, ConnectionTimeout)
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   c,
		Database: c.Database(dbName),
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanDatabase drops every collection so each test starts empty.
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.Database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}

	for _, name := range collections {
		if err := m.Database.Collection(name).Drop(ctx); err != nil {
			t.Fatalf("failed to drop collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// InsertItem seeds a scheduled item directly, bypassing the guarded write
// path, and returns its id.
func (m *MongoHelper) InsertItem(t *testing.T, item *model.ScheduledItem) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	doc := *item
	doc.ID = ""
	doc.CreatedAt, doc.UpdatedAt = now, now
	if doc.Participants == nil {
		doc.Participants = []string{}
	}

	res, err := m.Database.Collection(ScheduledItemsCollection).InsertOne(ctx, doc)
	if err != nil {
		t.Fatalf("failed to seed scheduled item: %v", err)
	}
	return res.InsertedID.(primitive.ObjectID).Hex()
}

// HoldLock inserts a live lock document for ref, as a concurrent writer would.
func (m *MongoHelper) HoldLock(t *testing.T, ref model.ResourceRef, ttl time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	_, err := m.Database.Collection(ResourceLocksCollection).InsertOne(ctx, model.ResourceLock{
		ID:        model.LockID(ref),
		Owner:     "integration-test",
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to hold lock: %v", err)
	}
}
