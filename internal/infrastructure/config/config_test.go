package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/glcore/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.True(t, cfg.BalanceTolerance.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, "3100", cfg.Accounts.RetainedEarnings)
	assert.Equal(t, "6990", cfg.Accounts.Rounding)
	assert.Equal(t, []string{"4100", "5100", "5200", "6990"}, cfg.Accounts.Nominal)
	assert.Equal(t, 168*time.Hour, cfg.OutboxRetention)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ACCOUNT_NOMINAL", "4000,6000")
	t.Setenv("BALANCE_TOLERANCE", "0")

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://example", cfg.DatabaseURL)
	assert.Equal(t, "redis://example", cfg.RedisURL)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 45*time.Second, cfg.DatabaseTimeout)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, []string{"4000", "6000"}, cfg.Accounts.Nominal)
	assert.True(t, cfg.BalanceTolerance.IsZero())
}

func TestLoadReadsDotenvWithoutOverridingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EVENT_STREAM=from-file\nHTTP_PORT=7070\n"), 0o600))

	t.Setenv("HTTP_PORT", "9191")
	t.Cleanup(func() { _ = os.Unsetenv("EVENT_STREAM") })

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.EventStream)
	assert.Equal(t, "9191", cfg.HTTPPort)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	_, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
