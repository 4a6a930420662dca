package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("ASSISTANT_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.Assistant.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PROJECT_ID", "acme")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("LIVE_CHANNEL_PREFIX", "desk")
	t.Setenv("ASSISTANT_TIMEOUT_SECONDS", "5")
	t.Setenv("LIVE_HEARTBEAT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "desk:acme:staging:changes", cfg.Channel())
	assert.Equal(t, 5*time.Second, cfg.Assistant.Timeout())
	assert.Equal(t, 15*time.Second, cfg.Live.Heartbeat())
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "first")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		App:  AppConfig{ProjectID: "acme", Env: "production"},
		Auth: AuthConfig{JWTSecret: devJWTSecret},
	}
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.Error(t, cfg.Validate(), "postgres is required in production")

	cfg.Postgres.DSN = "postgres://localhost/desk"
	assert.NoError(t, cfg.Validate())
}
