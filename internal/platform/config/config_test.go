package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"CONSOLE_API_URL", "CONSOLE_TIMEOUT", "CONSOLE_SESSION_BACKEND", "REDIS_URL"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.API.URL)
	assert.Equal(t, "/api", cfg.API.Prefix)
	assert.Equal(t, 120*time.Second, cfg.API.Timeout)
	assert.Equal(t, SessionMemory, cfg.Session.Backend)
	assert.Equal(t, "default", cfg.Session.Scope)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CONSOLE_API_URL", "https://logistics.example.com")
	t.Setenv("CONSOLE_TIMEOUT", "30s")
	t.Setenv("CONSOLE_SESSION_BACKEND", "Redis")
	t.Setenv("CONSOLE_SESSION_TTL", "2h")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_POOL_SIZE", "4")

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "https://logistics.example.com", cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, SessionRedis, cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 4, cfg.Redis.PoolSize)
}

func TestFromEnvErrors(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("CONSOLE_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "CONSOLE_TIMEOUT")
	})

	t.Run("redis without url", func(t *testing.T) {
		t.Setenv("CONSOLE_SESSION_BACKEND", "redis")
		t.Setenv("REDIS_URL", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "REDIS_URL")
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("CONSOLE_SESSION_BACKEND", "cookie")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONSOLE_API_PREFIX=/backend\n"), 0o600))
	t.Setenv("CONSOLE_API_PREFIX", "")
	require.NoError(t, os.Unsetenv("CONSOLE_API_PREFIX"))

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))

	require.NoError(t, err)
	assert.Equal(t, "/backend", cfg.API.Prefix)
}
