package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8095, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CountTTL)
	assert.Equal(t, "redis", cfg.PubSub.Driver)
	assert.False(t, cfg.Reconciler.Enabled)
	assert.Equal(t, 10, cfg.Feed.DefaultLimit)
	assert.Equal(t, 100, cfg.Feed.MaxLimit)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9000
database:
  driver: sqlite
  file_path: /tmp/graph.db
feed:
  max_limit: 50
reconciler:
  enabled: true
  interval: 5s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_NAME", "graph")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/graph.db", cfg.Database.ToDatabase().FilePath)
	assert.Equal(t, "graph", cfg.Database.DBName)
	assert.Equal(t, 50, cfg.Feed.MaxLimit)
	assert.True(t, cfg.Reconciler.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Reconciler.Interval)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}
