package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsYAMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: localhost:6379
  result_ttl: 24h
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv("QUIZRESULTS_REDIS_ADDR", "redis:6380")
	t.Setenv("QUIZRESULTS_POSTGRES_URL", "postgres://quiz@db/quiz")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "postgres://quiz@db/quiz", cfg.Postgres.URL)
	assert.Equal(t, 24*time.Hour, TTLDuration(cfg.Redis.ResultTTL, time.Hour))
	assert.Equal(t, slog.LevelDebug, LogLevel(cfg.Log.Level))
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("QUIZRESULTS_SERVER_PORT", "7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestTTLDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("soon", time.Minute))
	assert.Equal(t, 5*time.Second, TTLDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("0s", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("-1h", time.Minute))
	assert.Equal(t, slog.LevelInfo, LogLevel("loud"))
}
