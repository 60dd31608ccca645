package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RORIDECOR_HOME", home)
	t.Setenv("RORIDECOR_PROFILE", "")
	t.Setenv("RORIDECOR_BACKEND_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsValid())
	assert.Equal(t, "default", cfg.ActiveProfile)
	assert.Equal(t, "http://localhost:8000", cfg.Current().BackendURL)
	assert.Equal(t, DefaultCaptions, cfg.Captions())

	_, err = os.Stat(filepath.Join(home, ".roridecor", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".roridecor", "history.db"), cfg.HistoryPath())
	assert.Equal(t, filepath.Join(home, ".roridecor", "roridecor.log"), cfg.LogPath())
}

func TestLoadConfigRoundTripAndOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("RORIDECOR_HOME", home)
	t.Setenv("RORIDECOR_PROFILE", "")
	t.Setenv("RORIDECOR_BACKEND_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	gpu := DefaultProfile()
	gpu.BackendURL = "http://gpu-box:8000"
	gpu.Defaults.Budget = 200000
	gpu.History.Kind = HistoryLocal
	gpu.UI.Captions = []string{"one", "two"}
	cfg.Profiles["gpu"] = gpu
	require.NoError(t, cfg.Use("gpu"))
	require.NoError(t, cfg.Save())

	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gpu", cfg.ActiveProfile)
	assert.Equal(t, "http://gpu-box:8000", cfg.Current().BackendURL)
	assert.Equal(t, int64(200000), cfg.Current().Defaults.Budget)
	assert.Equal(t, HistoryLocal, cfg.Current().History.Kind)
	assert.Equal(t, []string{"one", "two"}, cfg.Captions())

	t.Setenv("RORIDECOR_PROFILE", "default")
	t.Setenv("RORIDECOR_BACKEND_URL", "http://override:9000")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.ActiveProfile)
	assert.Equal(t, "http://override:9000", cfg.Current().BackendURL)
}

func TestUseUnknownProfile(t *testing.T) {
	cfg := &Config{Profiles: map[string]Profile{"default": DefaultProfile()}, ActiveProfile: "default"}
	require.Error(t, cfg.Use("missing"))
}

func TestMissingActiveProfileFallsBack(t *testing.T) {
	cfg := &Config{Profiles: map[string]Profile{"b": {BackendURL: "http://b"}, "a": {BackendURL: "http://a"}}, ActiveProfile: "zzz"}
	require.NoError(t, cfg.setCurrentProfile())
	assert.Equal(t, "a", cfg.ActiveProfile)
	// defaults are filled in for sparse profiles
	assert.Equal(t, 0.55, cfg.Current().Defaults.Strength)
	assert.Equal(t, HistoryRemote, cfg.Current().History.Kind)
}

func TestNoProfiles(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.setCurrentProfile())
	assert.False(t, cfg.IsValid())
}
