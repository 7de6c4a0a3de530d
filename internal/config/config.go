// Package config centralises configuration parsing for the exercise tracker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Supported store drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config captures runtime configuration values for the exercise tracker.
type Config struct {
	Port              string `validate:"required,numeric"`
	DatabaseURL       string
	StoreDriver       string        `validate:"oneof=memory mongo postgres"`
	MongoDatabase     string        `validate:"required"`
	StoreTimeout      time.Duration `validate:"gt=0"`
	StrictStatusCodes bool
	CORSOrigin        string
	LogLevel          string
	LogFile           string
	JWTSecret         string
	JWTIssuer         string

	KafkaBrokers        []string
	ExerciseTopic       string        `validate:"required"`
	OutboxBatchSize     int           `validate:"gt=0"`
	OutboxFlushInterval time.Duration `validate:"gt=0"`
	OutboxQueueSize     int           `validate:"gt=0"`

	HealthCheckSchedule string `validate:"required"`

	ConsumerGroupID string
	ConsumerTopics  []string
	MetricsAddress  string
}

// HTTPAddress is the listen address derived from Port.
func (c Config) HTTPAddress() string {
	return ":" + c.Port
}

// KafkaEnabled reports whether exercise events should be delivered to Kafka.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// AuthEnabled reports whether bearer tokens are required.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Load reads a .env file when present, then environment variables, applying defaults for local dev.
func Load() (Config, error) {
	_ = godotenv.Load()

	databaseURL := getEnv("DB_URL", "")
	cfg := Config{
		Port:                getEnv("PORT", "3000"),
		DatabaseURL:         databaseURL,
		StoreDriver:         getEnv("STORE_DRIVER", DriverFromURL(databaseURL)),
		MongoDatabase:       getEnv("MONGO_DATABASE", "exercise_tracker"),
		StoreTimeout:        getDurationEnv("STORE_TIMEOUT", 10*time.Second),
		StrictStatusCodes:   getBoolEnv("STRICT_STATUS_CODES", false),
		CORSOrigin:          getEnv("CORS_ORIGIN", "*"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFile:             getEnv("LOG_FILE", ""),
		JWTSecret:           getEnv("AUTH_JWT_SECRET", ""),
		JWTIssuer:           getEnv("AUTH_JWT_ISSUER", ""),
		KafkaBrokers:        splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		ExerciseTopic:       getEnv("EXERCISE_TOPIC", "exercise_events"),
		OutboxBatchSize:     getIntEnv("OUTBOX_BATCH_SIZE", 25),
		OutboxFlushInterval: getDurationEnv("OUTBOX_FLUSH_INTERVAL", 2*time.Second),
		OutboxQueueSize:     getIntEnv("OUTBOX_QUEUE_SIZE", 1024),
		HealthCheckSchedule: getEnv("HEALTH_CHECK_SCHEDULE", "@every 30s"),
		ConsumerGroupID:     getEnv("CONSUMER_GROUP_ID", "exercise-tracker-consumer"),
		ConsumerTopics:      splitAndTrim(getEnv("CONSUMER_TOPICS", "exercise_events")),
		MetricsAddress:      getEnv("METRICS_ADDRESS", ":9195"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.StoreDriver != DriverMemory && c.DatabaseURL == "" {
		return fmt.Errorf("%w: DB_URL is required for store driver %s", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}

// DriverFromURL infers the store driver from a connection string scheme.
func DriverFromURL(url string) string {
	lower := strings.ToLower(strings.TrimSpace(url))
	switch {
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return DriverMongo
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DriverPostgres
	default:
		return DriverMemory
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
