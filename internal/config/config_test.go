package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.AutoMigrateUp)
	assert.False(t, cfg.AutoMigrateDown)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("STORAGE", StoragePostgres)
	t.Setenv("POSTGRES_CONN", "postgres://u:p@db:5432/market")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("SEED_DEMO", "true")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "postgres://u:p@db:5432/market", cfg.Conn)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.SeedDemo)
}

func TestNewConfigUnknownStorage(t *testing.T) {
	t.Setenv("STORAGE", "sqlite")

	_, err := NewConfig()
	require.Error(t, err)
}

func TestNewPostgresConfig(t *testing.T) {
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "3")

	cfg, err := NewPostgresConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxOpenConns)
}
