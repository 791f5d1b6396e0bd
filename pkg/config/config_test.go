package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 10, cfg.Simulator.TargetFPS)
	assert.Equal(t, 256, cfg.Terrain.Width)
	assert.False(t, cfg.Persist.Enabled)
	assert.NotZero(t, cfg.Ingress.Web.Port)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SIMIAN_CONFIG", `{"Simulator": {"TargetFPS": 45, "RegionName": "sandbox"}}`)

	cfg, err := GetSimianConfig()
	assert.NoError(t, err)
	assert.Equal(t, 45, cfg.Simulator.TargetFPS)
	assert.Equal(t, "sandbox", cfg.Simulator.RegionName)

	// Untouched sections keep their defaults.
	assert.Equal(t, 256, cfg.Terrain.Width)
}

func TestEnvUnsetYieldsDefaults(t *testing.T) {
	os.Unsetenv("SIMIAN_CONFIG")

	cfg, err := GetSimianConfig()
	assert.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvRejectsBadJSON(t *testing.T) {
	t.Setenv("SIMIAN_CONFIG", "{nope")

	_, err := GetSimianConfig()
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(`{"Redis": {"Enabled": true, "Address": "redis:6379"}}`), 0644)
	assert.NoError(t, err)

	cfg, err := FromFile(path)
	assert.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, "simian.events", cfg.Redis.Channel)
}

func TestFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
