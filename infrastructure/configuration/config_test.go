package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10001, cfg.App.Port)
	assert.Equal(t, "psql", cfg.Database.Vendor)
	assert.Equal(t, "6379", cfg.RedisClient.Port)
	assert.Equal(t, 2, cfg.Scheduler.Workers)
	assert.Equal(t, 10, cfg.Scheduler.BatchSize)
	assert.Equal(t, 15, cfg.Scheduler.PollIntervalSeconds)
	assert.Equal(t, 5, cfg.Scheduler.MaxAttempts)
	assert.Equal(t, 300, cfg.Scheduler.RetryBackoffSeconds)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_VENDOR", "mssql")
	t.Setenv("MSSQL_HOST", "db.internal")
	t.Setenv("ENCRYPTION_KEY", "k-from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "mssql", cfg.Database.Vendor)
	assert.Equal(t, "db.internal", cfg.Database.Mssql.Host)
	assert.Equal(t, "k-from-env", cfg.Security.EncryptionKey)
}
