package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Data sources accepted by DATA_SOURCE.
const (
	SourceMock   = "mock"
	SourceSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Timeline grid. A zero TimelineReference means "now" at startup.
	TimelineReference  time.Time
	TimelineDaysBefore int
	TimelineDaysAfter  int
	DefaultVariable    string

	DataSource string
	SQLitePath string
	MockPoints int
	MockSeed   int64

	// Change event publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaEventsTopic   string
	BatchSize          int
	BatchFlushInterval time.Duration
	EventQueueSize     int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	var reference time.Time
	if s := os.Getenv("TIMELINE_REFERENCE"); s != "" {
		reference, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, errors.New("invalid TIMELINE_REFERENCE: must be RFC3339")
		}
	}

	daysBefore, err := parseDays("TIMELINE_DAYS_BEFORE")
	if err != nil {
		return nil, err
	}
	daysAfter, err := parseDays("TIMELINE_DAYS_AFTER")
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}
	batchFlushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}
	queueSize, err := parsePositiveInt("EVENT_QUEUE_SIZE", 1024)
	if err != nil {
		return nil, err
	}

	mockPoints, err := parsePositiveInt("MOCK_POINTS", 500)
	if err != nil {
		return nil, err
	}
	mockSeed, err := strconv.ParseInt(sharedcfg.EnvOrDefault("MOCK_SEED", "1"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid MOCK_SEED")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		TimelineReference:  reference,
		TimelineDaysBefore: daysBefore,
		TimelineDaysAfter:  daysAfter,
		DefaultVariable:    sharedcfg.EnvOrDefault("DEFAULT_VARIABLE", "temperature"),

		DataSource: sharedcfg.EnvOrDefault("DATA_SOURCE", SourceMock),
		SQLitePath: os.Getenv("SQLITE_PATH"),
		MockPoints: mockPoints,
		MockSeed:   mockSeed,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEventsTopic:   sharedcfg.EnvOrDefault("KAFKA_EVENTS_TOPIC", "dashboard-events"),
		BatchSize:          batchSize,
		BatchFlushInterval: batchFlushInterval,
		EventQueueSize:     queueSize,
	}

	switch cfg.DataSource {
	case SourceMock:
	case SourceSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("DATA_SOURCE is sqlite but SQLITE_PATH is not set")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: must be mock or sqlite", cfg.DataSource)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parseDays(key string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, "15"))
	if err != nil || n < 0 || n > 366 {
		return 0, fmt.Errorf("invalid %s: must be 0-366", key)
	}
	return n, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
