package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "http://127.0.0.1:9090", cfg.BridgeURL)
	assert.Equal(t, 10*time.Second, cfg.BridgeTimeout)
	assert.Equal(t, 10, cfg.PageSize)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("GRID_PAGE_SIZE", "25")
	t.Setenv("BRIDGE_URL", "http://bridge.internal:7000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "http://bridge.internal:7000", cfg.BridgeURL)
}

func TestLoadConfigRejectsInvalidPageSize(t *testing.T) {
	t.Setenv("GRID_PAGE_SIZE", "0")
	_, err := LoadConfig()
	require.Error(t, err)
}
