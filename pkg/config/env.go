package config

const (
	EnvDotEnvPath = "DOTENV_PATH"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockTTL = "LOCK_TTL"

	EnvCalendarTimeZone  = "CALENDAR_TIME_ZONE"
	EnvCalendarMaxEvents = "CALENDAR_MAX_EVENTS"

	EnvKafkaEnabled  = "KAFKA_ENABLED"
	EnvKafkaTopic    = "KAFKA_TOPIC"
	EnvKafkaDLQTopic = "KAFKA_DLQ_TOPIC"
)
