package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the top-level configuration loaded from file and
// environment. Environment variables (KEYSYNC_*) overlay file values.
type Config struct {
	// DataDir is the durable store location. Empty selects the
	// OS-specific default (see DefaultDataDir).
	DataDir string `json:"dataDir" env:"KEYSYNC_DATA_DIR"`
	// DefaultDatabase and DefaultStore form the namespace used when a
	// caller does not specify one.
	DefaultDatabase string `json:"defaultDatabase" env:"KEYSYNC_DEFAULT_DATABASE"`
	DefaultStore    string `json:"defaultStore" env:"KEYSYNC_DEFAULT_STORE"`
	// DebounceMs is the default write-coalescing window for sessions
	// that do not override it.
	DebounceMs int `json:"debounceMs" env:"KEYSYNC_DEBOUNCE_MS"`
	// OpTimeoutMs bounds each storage get/put/delete; expiry is treated
	// as a read/write failure. 0 disables the bound.
	OpTimeoutMs int `json:"opTimeoutMs" env:"KEYSYNC_OP_TIMEOUT_MS"`
	// Fsync is one of always|interval|never.
	Fsync string `json:"fsync" env:"KEYSYNC_FSYNC"`
	// FsyncIntervalMs is the group-commit window when Fsync=interval.
	FsyncIntervalMs int `json:"fsyncIntervalMs" env:"KEYSYNC_FSYNC_INTERVAL_MS"`
	// LogLevel is one of debug|info|warn|error.
	LogLevel string `json:"logLevel" env:"KEYSYNC_LOG_LEVEL"`
	// LogFormat is one of text|json.
	LogFormat string `json:"logFormat" env:"KEYSYNC_LOG_FORMAT"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DefaultDatabase: "keysync",
		DefaultStore:    "state",
		DebounceMs:      500,
		OpTimeoutMs:     5000,
		Fsync:           "always",
		FsyncIntervalMs: 5,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads configuration from a JSON file, then overlays environment
// variables. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := FromEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overlays KEYSYNC_* environment variables onto cfg.
func FromEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse environment: %w", err)
	}
	return nil
}

// Debounce returns the default debounce window as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// OpTimeout returns the storage operation bound as a duration.
func (c Config) OpTimeout() time.Duration {
	return time.Duration(c.OpTimeoutMs) * time.Millisecond
}
