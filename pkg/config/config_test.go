package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("comment-admin")
	require.NoError(t, err)

	assert.Equal(t, "comment-admin", cfg.App.Name)
	assert.Equal(t, ":21011", cfg.Server.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.HTTP.Timeout)
	assert.Equal(t, "http://localhost:21010", cfg.CommentClient.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.CommentClient.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "postgres", cfg.App.Storage)
	assert.Equal(t, 30, cfg.App.RateLimit)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STORAGE", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("COMMENT_SERVICE_TIMEOUT", "5s")
	t.Setenv("OTEL_SAMPLE_RATE", "0.25")

	cfg, err := LoadConfig("comment-service")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.HTTP.Addr)
	assert.Equal(t, "memory", cfg.App.Storage)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.CommentClient.Timeout)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRate, 1e-9)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := "app:\n  log_level: debug\nkafka:\n  topic: moderation\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", file)

	cfg, err := LoadConfig("comment-service")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "moderation", cfg.Kafka.Topic)
}

func TestLoadConfigUnknownService(t *testing.T) {
	_, err := LoadConfig("chat-service")
	assert.Error(t, err)
}
