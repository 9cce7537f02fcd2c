// Package config loads restui configuration from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	AppDir               = "restui"
	DefaultCollectionKey = "savedTransactions"
	DefaultDatabaseFile  = "history.db"
	DefaultLogFile       = "restui.log"
)

// Config is the application configuration
type Config struct {
	Version  string         `yaml:"version" toml:"version"`
	Store    StoreConfig    `yaml:"store" toml:"store"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	EventLog EventLogConfig `yaml:"event_log" toml:"event_log"`
	Replay   ReplayConfig   `yaml:"replay" toml:"replay"`
}

// StoreConfig selects the persisted collection backend
type StoreConfig struct {
	Driver        string `yaml:"driver" toml:"driver"` // sqlite|bolt|memory
	Path          string `yaml:"path" toml:"path"`
	CollectionKey string `yaml:"collection_key" toml:"collection_key"`
}

// LogConfig configures the logger sinks
type LogConfig struct {
	Level      string   `yaml:"level" toml:"level"`
	Writer     []string `yaml:"writer" toml:"writer"`
	File       string   `yaml:"file" toml:"file"`
	MaxSizeMB  int      `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int      `yaml:"max_backups" toml:"max_backups"`
}

// EventLogConfig holds the surfacing policy
type EventLogConfig struct {
	// SilentMethods are logged without surfacing the log presenter.
	SilentMethods []string `yaml:"silent_methods" toml:"silent_methods"`
}

// ReplayConfig configures the replay runner
type ReplayConfig struct {
	BaseURL   string `yaml:"base_url" toml:"base_url"`
	TimeoutMS int    `yaml:"timeout_ms" toml:"timeout_ms"`
}

// NewConfig creates the default configuration
func NewConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Store: StoreConfig{
			Driver:        "sqlite",
			CollectionKey: DefaultCollectionKey,
		},
		Log: LogConfig{
			Level:      "info",
			Writer:     []string{"console"},
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		EventLog: EventLogConfig{
			SilentMethods: []string{"GENERATE"},
		},
		Replay: ReplayConfig{
			TimeoutMS: 30000,
		},
	}
}

// DefaultDir returns the per-user configuration directory for restui
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, AppDir), nil
}

// Load reads the file at path on top of the defaults.
// Files ending in .toml are parsed as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := NewConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration, picking the format from the extension
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "bolt", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.CollectionKey == "" {
		return fmt.Errorf("store.collection_key must not be empty")
	}
	if c.Replay.TimeoutMS < 0 {
		return fmt.Errorf("replay.timeout_ms must not be negative")
	}
	return nil
}

// ResolvePaths fills empty file paths relative to dir
func (c *Config) ResolvePaths(dir string) {
	if c.Store.Path == "" && c.Store.Driver != "memory" {
		c.Store.Path = filepath.Join(dir, DefaultDatabaseFile)
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, DefaultLogFile)
	}
}

// DefaultFile is the config file looked up in the default directory
const DefaultFile = "config.yaml"

// Resolve loads the config at path, or the default file when path is empty.
// A missing default file yields the defaults. File paths left empty are
// placed next to the config file.
func Resolve(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, DefaultFile)
	}

	cfg, err := Load(path)
	if err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = NewConfig()
	}

	cfg.ResolvePaths(filepath.Dir(path))
	return cfg, nil
}
