package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT",
		"DATABASE_URL", "DATA_GOV_API_KEY", "DATA_GOV_BASE_URL", "DATA_GOV_TIMEOUT",
		"CACHE_TTL", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
		"COVERAGE_RADIUS_KM", "KAFKA_BROKERS", "KAFKA_EVENTS_TOPIC",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 30*time.Second, cfg.DataGovTimeout)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.InDelta(t, 50, cfg.CoverageRadiusKm, 1e-9)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Custom(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/welfare")
	t.Setenv("DATA_GOV_API_KEY", "secret")
	t.Setenv("DATA_GOV_TIMEOUT", "10s")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("RATE_LIMIT_REQUESTS", "25")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("COVERAGE_RADIUS_KM", "75.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://localhost/welfare", cfg.DatabaseURL)
	assert.Equal(t, "secret", cfg.DataGovAPIKey)
	assert.Equal(t, 10*time.Second, cfg.DataGovTimeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 25, cfg.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.InDelta(t, 75.5, cfg.CoverageRadiusKm, 1e-9)
}

func TestLoad_KafkaBrokers(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "metrics-resolutions", cfg.KafkaEventsTopic)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"bad duration":    {"CACHE_TTL", "soon"},
		"zero duration":   {"RATE_LIMIT_WINDOW", "0s"},
		"negative int":    {"RATE_LIMIT_REQUESTS", "-5"},
		"non-numeric int": {"RATE_LIMIT_REQUESTS", "many"},
		"zero float":      {"COVERAGE_RADIUS_KM", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), kv[0])
		})
	}
}
