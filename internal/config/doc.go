// Package config holds runtime configuration for the keysync engine
// and CLI: data directory, default namespace, debounce and storage
// timeout windows, fsync policy, and logging settings. Values load from
// an optional JSON file with KEYSYNC_* environment overlay.
package config
