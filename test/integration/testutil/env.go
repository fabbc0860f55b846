package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	mongoMigration "darassa/internal/migrations/mongo"
	"darassa/pkg/client"
	"darassa/pkg/logger"
)

const (
	DefaultHealthCheckTimeout = 30 * time.Second
	migrationTimeout          = 30 * time.Second
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	ServerPort   string
	BearerToken  string
}

func NewTestEnv() *TestEnv {
	serverPort := getEnv("TEST_SERVER_PORT", "8080")

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    getEnv("TEST_SERVER_URL", fmt.Sprintf("http://localhost:%s", serverPort)),
		ServerPort:   serverPort,
		BearerToken:  os.Getenv("TEST_BEARER_TOKEN"),
	}
}

// Setup skips the test unless INTEGRATION=1, then wipes and re-migrates the
// database and waits for the running service.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *client.HttpClient) {
	t.Helper()
	if os.Getenv("INTEGRATION") != "1" {
		t.Skip("set INTEGRATION=1 to run against a live service and MongoDB")
	}

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()
	if err := mongoMigration.RunMigration(ctx, mongo.Database, logger.Discard()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	httpClient := client.NewHttpClient(e.ServerURL)
	httpClient.BearerToken = e.BearerToken
	if err := httpClient.WaitForHealthy(DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("service not healthy: %v", err)
	}

	return mongo, httpClient
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
