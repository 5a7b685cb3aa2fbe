package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/parceltrack/internal/logging"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("PARCELTRACK_HOME", t.TempDir())

	cfg := New()
	assert.Equal(t, DefaultEndpoint, cfg.Lookup.Endpoint)
	assert.Equal(t, "en", cfg.Lookup.Language)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Lookup.TimeoutSeconds)
	assert.Equal(t, DefaultCheckpointInterval, cfg.Sync.CheckpointInterval)
	assert.Contains(t, cfg.Sync.TrackingAliases, "Cislo zasilky")
	assert.Contains(t, cfg.Sync.TrackingAliases, "Číslo zásilky")
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestNew_OverlayFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PARCELTRACK_HOME", home)
	content := "lookup:\n  timeout_seconds: 30\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0600))

	cfg := New()
	assert.Equal(t, 30, cfg.Lookup.TimeoutSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultEndpoint, cfg.Lookup.Endpoint)
	assert.Equal(t, DefaultCheckpointInterval, cfg.Sync.CheckpointInterval)
}

func TestNew_BrokenFileFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PARCELTRACK_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("::not yaml::"), 0600))

	cfg := New()
	assert.Equal(t, DefaultEndpoint, cfg.Lookup.Endpoint)
}

func TestLoadFrom(t *testing.T) {
	t.Run("BadFileIsAnError", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("lookup: [broken"), 0600))

		_, err := LoadFrom(path)
		assert.Error(t, err)
	})

	t.Run("MissingFileIsAnError", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("BlankedFieldsAreRenormalized", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "lookup:\n  endpoint: \"\"\n  timeout_seconds: -1\nsync:\n  checkpoint_interval: 0\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := LoadFrom(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultEndpoint, cfg.Lookup.Endpoint)
		assert.Equal(t, DefaultTimeoutSeconds, cfg.Lookup.TimeoutSeconds)
		assert.Equal(t, DefaultCheckpointInterval, cfg.Sync.CheckpointInterval)
	})
}

func TestLookupConfig_Timeout(t *testing.T) {
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, LookupConfig{}.Timeout())
	assert.Equal(t, 5*time.Second, LookupConfig{TimeoutSeconds: 5}.Timeout())
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, LookupConfig{TimeoutSeconds: -3}.Timeout())
}

func TestLoggingConfig_ToLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: "json"}
	out := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, out.Output)

	lc.File = "/tmp/x.log"
	out = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, out.Output)
	assert.Equal(t, "/tmp/x.log", out.File)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	// The generated file parses back to the defaults.
	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, cfg.Lookup.Endpoint)
	assert.Equal(t, DefaultTrackingAliases(), cfg.Sync.TrackingAliases)

	// Refuses to overwrite.
	err = WriteDefaultConfig(path)
	assert.ErrorContains(t, err, "already exists")
}

func TestGetConfigDir_EnvOverride(t *testing.T) {
	t.Setenv("PARCELTRACK_HOME", "/custom/home")
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/custom/home", dir)
}

func TestGlobalConfig(t *testing.T) {
	t.Setenv("PARCELTRACK_HOME", t.TempDir())
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)

	cfg := GetGlobalConfig()
	require.NotNil(t, cfg)
	// Repeated calls hand back the same instance.
	assert.Same(t, cfg, GetGlobalConfig())
	assert.Equal(t, cfg.Logging, GetLoggingConfig())
	assert.Equal(t, cfg.Lookup, GetLookupConfig())
	assert.Equal(t, cfg.Sync.CheckpointInterval, GetSyncConfig().CheckpointInterval)
}
