// Package config loads application settings from defaults, an optional TOML
// config file, and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// MigrationPolicy controls what happens when the automatic startup migration
// fails: strict aborts startup, permissive logs and serves against a possibly
// stale schema (a developer convenience, not safe for production).
type MigrationPolicy string

const (
	MigrationPolicyStrict     MigrationPolicy = "strict"
	MigrationPolicyPermissive MigrationPolicy = "permissive"
)

type Config struct {
	AppName    string `toml:"app_name"`
	AppVersion string `toml:"app_version"`
	Debug      bool   `toml:"debug"`

	// DataDir is the canonical application directory (database, logs).
	DataDir string `toml:"data_dir"`

	// DatabaseURL overrides the default sqlite database location. Supported
	// forms: sqlite path or sqlite://path (default), postgres://..., mysql://...
	DatabaseURL string `toml:"database_url"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	MigrationPolicy MigrationPolicy `toml:"migration_policy"`

	// NotificationSchedule lists lead offsets before a task's eta at which
	// reminder notifications are recorded, e.g. ["24h", "6h"].
	NotificationSchedule []string `toml:"notification_schedule"`

	TelemetryEnabled bool `toml:"telemetry_enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		AppName:              "TaskGenie",
		AppVersion:           "0.1.0",
		DataDir:              filepath.Join(home, ".taskgenie"),
		Host:                 "127.0.0.1",
		Port:                 8080,
		LogLevel:             "info",
		MigrationPolicy:      MigrationPolicyStrict,
		NotificationSchedule: []string{"24h", "6h"},
		TelemetryEnabled:     true,
	}
}

// Load builds the effective configuration: defaults, then the TOML config
// file if present, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	path := configFilePath()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("TASKGENIE_CONFIG_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".taskgenie", "config.toml")
}

func applyEnv(cfg *Config) {
	cfg.DataDir = getEnv("TASKGENIE_DATA_DIR", cfg.DataDir)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Host = getEnv("HOST", cfg.Host)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.MigrationPolicy = MigrationPolicy(getEnv("MIGRATION_POLICY", string(cfg.MigrationPolicy)))

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("TELEMETRY_ENABLED"); v != "" {
		cfg.TelemetryEnabled = v == "1" || strings.EqualFold(v, "true")
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func (c *Config) validate() error {
	switch c.MigrationPolicy {
	case MigrationPolicyStrict, MigrationPolicyPermissive:
	default:
		return fmt.Errorf("invalid migration_policy %q (want strict or permissive)", c.MigrationPolicy)
	}
	for _, offset := range c.NotificationSchedule {
		if _, err := time.ParseDuration(offset); err != nil {
			return fmt.Errorf("invalid notification_schedule entry %q: %w", offset, err)
		}
	}
	return nil
}

// NotificationOffsets parses the configured schedule into durations.
// Entries were validated at load time.
func (c *Config) NotificationOffsets() []time.Duration {
	offsets := make([]time.Duration, 0, len(c.NotificationSchedule))
	for _, s := range c.NotificationSchedule {
		if d, err := time.ParseDuration(s); err == nil {
			offsets = append(offsets, d)
		}
	}
	return offsets
}

// DatabaseURLResolved returns the configured database URL, defaulting to the
// canonical sqlite file under the data directory.
func (c *Config) DatabaseURLResolved() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "sqlite://" + filepath.Join(c.DataDir, "data", "taskgenie.db")
}

// DatabasePath returns the sqlite database file path, or "" when the
// configured store is not a file-backed sqlite database.
func (c *Config) DatabasePath() string {
	url := c.DatabaseURLResolved()
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "mysql://"):
		return ""
	}
	path := strings.TrimPrefix(url, "sqlite://")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == ":memory:" || strings.Contains(url, "mode=memory") {
		return ""
	}
	return path
}

// LogsDir returns the canonical log directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// EnsureDirs creates the canonical application directories. Call once at
// process startup, not at import time.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.DataDir,
		filepath.Join(c.DataDir, "data"),
		c.LogsDir(),
	}
	if p := c.DatabasePath(); p != "" {
		dirs = append(dirs, filepath.Dir(p))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
