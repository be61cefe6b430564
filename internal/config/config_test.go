package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.App.Addr)
	assert.Equal(t, "mechatrack.sqlite3", cfg.DB.Path)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5, cfg.Inventory.LowStockThreshold)
	assert.False(t, cfg.Redis.RateLimitEnabled())
	assert.True(t, cfg.App.IsDev())
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MECHATRACK_DB_PATH", "/tmp/shop.db")
	t.Setenv("MECHATRACK_JWT_SECRET", "s3cret")
	t.Setenv("MECHATRACK_JWT_TTL", "1h")
	t.Setenv("MECHATRACK_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("MECHATRACK_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shop.db", cfg.DB.Path)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Redis.RateLimitEnabled())
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MECHATRACK_LOW_STOCK_THRESHOLD=7\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MECHATRACK_LOW_STOCK_THRESHOLD") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Inventory.LowStockThreshold)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MECHATRACK_JWT_TTL", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt ttl")
}
