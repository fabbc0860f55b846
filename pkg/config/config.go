package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"time"

	kafka_config "darassa/pkg/kafka/config"
	"darassa/pkg/logger"

	"github.com/joho/godotenv"
)

var (
	mongoURIRegex   = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	JWTSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LockTTL time.Duration

	CalendarTimeZone  string
	CalendarMaxEvents int

	KafkaEnabled  bool
	KafkaTopic    string
	KafkaDLQTopic string
	Kafka         *kafka_config.Config

	Log *logger.Logger
}

// Load reads the environment (and an optional .env file), validates the
// result and exits the process when the configuration is unusable.
func Load(serviceName string) *Config {
	dotEnvErr := loadDotEnv()

	cfg := FromEnv(serviceName)
	if dotEnvErr != nil {
		cfg.Log.Warn("Failed to load .env file", "error", dotEnvErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	if cfg.KafkaEnabled {
		cfg.Kafka = kafka_config.Load()
	}
	cfg.LogConfiguration()
	return cfg
}

func loadDotEnv() error {
	path := getEnvStr(EnvDotEnvPath, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// FromEnv builds a Config without validating it.
func FromEnv(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LockTTL: getEnvDuration(EnvLockTTL, DefaultLockTTL),

		CalendarTimeZone:  getEnvStr(EnvCalendarTimeZone, DefaultCalendarTimeZone),
		CalendarMaxEvents: getEnvNum(EnvCalendarMaxEvents, DefaultCalendarMaxEvents),

		KafkaEnabled:  getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		KafkaTopic:    getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),
		KafkaDLQTopic: getEnvStr(EnvKafkaDLQTopic, DefaultKafkaDLQTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"LockTTL", cfg.LockTTL},
	}
	for _, d := range durations {
		if d.value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.CalendarMaxEvents <= 0 {
		problems = append(problems, fmt.Sprintf("CalendarMaxEvents must be positive, got: %d", cfg.CalendarMaxEvents))
	}
	if _, err := time.LoadLocation(cfg.CalendarTimeZone); err != nil {
		problems = append(problems, fmt.Sprintf("CalendarTimeZone must be an IANA time zone, got: %s", cfg.CalendarTimeZone))
	}

	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		problems = append(problems, "KafkaTopic cannot be empty when Kafka is enabled")
	}

	if len(problems) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range problems {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) AuthEnabled() bool {
	return cfg.JWTSecret != ""
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"auth_enabled", cfg.AuthEnabled(),
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"lock_ttl", cfg.LockTTL,
		"calendar_time_zone", cfg.CalendarTimeZone,
		"calendar_max_events", cfg.CalendarMaxEvents,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_topic", cfg.KafkaTopic,
	)
	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
