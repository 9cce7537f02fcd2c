package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, DefaultCollectionKey, cfg.Store.CollectionKey)
	assert.Equal(t, []string{"GENERATE"}, cfg.EventLog.SilentMethods)
	assert.Equal(t, 30000, cfg.Replay.TimeoutMS)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "restui.yaml", `
store:
  driver: bolt
  path: /tmp/history.bolt
log:
  level: debug
  writer: [console, file]
event_log:
  silent_methods: [GENERATE, POLL]
replay:
  base_url: http://localhost:8080
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bolt", cfg.Store.Driver)
	assert.Equal(t, "/tmp/history.bolt", cfg.Store.Path)
	assert.Equal(t, DefaultCollectionKey, cfg.Store.CollectionKey, "unset keys keep defaults")
	assert.Equal(t, []string{"console", "file"}, cfg.Log.Writer)
	assert.Equal(t, []string{"GENERATE", "POLL"}, cfg.EventLog.SilentMethods)
	assert.Equal(t, "http://localhost:8080", cfg.Replay.BaseURL)
	assert.Equal(t, 30000, cfg.Replay.TimeoutMS)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "restui.toml", `
[store]
driver = "memory"
collection_key = "history"

[replay]
timeout_ms = 500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "history", cfg.Store.CollectionKey)
	assert.Equal(t, 500, cfg.Replay.TimeoutMS)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeFile(t, "restui.yaml", "store:\n  driver: postgres\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, "restui.toml", "[store\ndriver=")

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"restui.yaml", "restui.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := NewConfig()
			cfg.Store.Driver = "bolt"
			cfg.EventLog.SilentMethods = []string{"GENERATE", "HEALTH"}

			require.NoError(t, cfg.Save(path))
			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := NewConfig()
	cfg.ResolvePaths("/data/restui")

	assert.Equal(t, filepath.Join("/data/restui", DefaultDatabaseFile), cfg.Store.Path)
	assert.Equal(t, filepath.Join("/data/restui", DefaultLogFile), cfg.Log.File)

	mem := NewConfig()
	mem.Store.Driver = "memory"
	mem.ResolvePaths("/data/restui")
	assert.Empty(t, mem.Store.Path)
}

func TestResolveExplicitFile(t *testing.T) {
	path := writeFile(t, "restui.yaml", "store:\n  driver: bolt\n")

	cfg, err := Resolve(path)

	require.NoError(t, err)
	assert.Equal(t, "bolt", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultDatabaseFile), cfg.Store.Path)
}

func TestResolveExplicitMissingFile(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveDefaultFileAbsent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	cfg, err := Resolve("")

	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(home, AppDir, DefaultDatabaseFile), cfg.Store.Path)
}
