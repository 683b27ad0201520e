package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DatabaseURL empty means no persistent store: the metrics cache runs
	// in memory and district lookups degrade.
	DatabaseURL string

	// data.gov.in provider configuration.
	DataGovAPIKey  string
	DataGovBaseURL string
	DataGovTimeout time.Duration

	CacheTTL time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	CoverageRadiusKm float64

	// Kafka resolution-event publishing; disabled when no brokers are set.
	KafkaBrokers     []string
	KafkaEventsTopic string
	KafkaEnabled     bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	dataGovTimeout, err := parseDuration("DATA_GOV_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	rateLimitWindow, err := parseDuration("RATE_LIMIT_WINDOW", "60s")
	if err != nil {
		return nil, err
	}

	rateLimitRequests, err := parsePositiveInt("RATE_LIMIT_REQUESTS", 100)
	if err != nil {
		return nil, err
	}

	coverageRadius, err := parsePositiveFloat("COVERAGE_RADIUS_KM", 50)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		DataGovAPIKey:  os.Getenv("DATA_GOV_API_KEY"),
		DataGovBaseURL: os.Getenv("DATA_GOV_BASE_URL"),
		DataGovTimeout: dataGovTimeout,

		CacheTTL: cacheTTL,

		RateLimitRequests: rateLimitRequests,
		RateLimitWindow:   rateLimitWindow,

		CoverageRadiusKm: coverageRadius,

		KafkaBrokers:     brokers,
		KafkaEventsTopic: envOrDefault("KAFKA_EVENTS_TOPIC", "metrics-resolutions"),
		KafkaEnabled:     len(brokers) > 0,
	}

	if cfg.KafkaEnabled && cfg.KafkaEventsTopic == "" {
		return nil, errors.New("KAFKA_EVENTS_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parsePositiveFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
