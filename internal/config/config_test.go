package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.DefaultDatabase != "keysync" || cfg.DefaultStore != "state" {
		t.Fatalf("unexpected default namespace: %+v", cfg)
	}
	if cfg.Debounce() != 500*time.Millisecond {
		t.Fatalf("unexpected debounce: %v", cfg.Debounce())
	}
	if cfg.OpTimeout() != 5*time.Second {
		t.Fatalf("unexpected op timeout: %v", cfg.OpTimeout())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"defaultDatabase":"app","debounceMs":100,"fsync":"interval"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultDatabase != "app" || cfg.DebounceMs != 100 || cfg.Fsync != "interval" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	// Untouched fields keep defaults.
	if cfg.DefaultStore != "state" {
		t.Fatalf("default lost: %+v", cfg)
	}
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("KEYSYNC_DEFAULT_STORE", "session")
	t.Setenv("KEYSYNC_DEBOUNCE_MS", "50")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultStore != "session" || cfg.DebounceMs != 50 {
		t.Fatalf("env overlay not applied: %+v", cfg)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDefaultDataDirNonEmpty(t *testing.T) {
	if DefaultDataDir() == "" {
		t.Fatalf("empty data dir")
	}
}
