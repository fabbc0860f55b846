package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "darassa"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLockTTL = 10 * time.Second

	DefaultCalendarTimeZone  = "UTC"
	DefaultCalendarMaxEvents = 500

	DefaultKafkaEnabled  = false
	DefaultKafkaTopic    = "scheduling.items"
	DefaultKafkaDLQTopic = "scheduling.items.dlq"

	DefaultPaginationLimit = 100
)
