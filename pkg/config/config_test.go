package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "./models/model_v0.2.gob", cfg.Model.Path)
	assert.Equal(t, "./models/metrics_v0.2.json", cfg.Model.MetadataPath)
	assert.False(t, cfg.Model.FallbackStub)
	assert.True(t, cfg.History.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 300, cfg.Cache.TTLSec)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("TRIAGE_SERVER_PORT", "9001")
	t.Setenv("TRIAGE_MODEL_PATH", "/opt/models/model_v1.gob")
	t.Setenv("TRIAGE_CACHE_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "/opt/models/model_v1.gob", cfg.Model.Path)
	assert.True(t, cfg.Cache.Enabled)
}
