package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	kvcmd "github.com/rzbill/keysync/internal/cmd/kv"
	cfgpkg "github.com/rzbill/keysync/internal/config"
	"github.com/rzbill/keysync/internal/namespace"
	"github.com/rzbill/keysync/internal/session"
	"github.com/rzbill/keysync/internal/storage/pebblestore"
	logpkg "github.com/rzbill/keysync/pkg/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := &cobra.Command{
		Use:          "keysync",
		Short:        "Keysync state CLI",
		Long:         "Keysync synchronizes keyed state between memory and a durable store. This CLI reads, writes, removes, and watches entries.",
		SilenceUsage: true,
	}
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to JSON config file")
	flags.String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	flags.String("db", "", "Namespace database (default from config)")
	flags.String("store", "", "Namespace store (default from config)")
	flags.Int("debounce-ms", 0, "Write-coalescing window in ms (default from config)")
	flags.String("fsync", "", "Fsync mode: always|interval|never")
	flags.Int("fsync-interval-ms", 0, "When --fsync=interval, group-commit window in ms")
	flags.String("log-level", os.Getenv("KEYSYNC_LOG_LEVEL"), "Log level: debug|info|warn|error")
	flags.String("log-format", os.Getenv("KEYSYNC_LOG_FORMAT"), "Log format: text|json (default text)")

	open := func(context.Context) (*kvcmd.Handle, error) {
		return openHandle(rootCmd)
	}
	rootCmd.AddCommand(kvcmd.NewGetCommand(open))
	rootCmd.AddCommand(kvcmd.NewSetCommand(open))
	rootCmd.AddCommand(kvcmd.NewDelCommand(open))
	rootCmd.AddCommand(kvcmd.NewWatchCommand(open))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// openHandle resolves config (file, environment, then flags), opens the
// store, and builds the engine for one command invocation.
func openHandle(rootCmd *cobra.Command) (*kvcmd.Handle, error) {
	flags := rootCmd.PersistentFlags()
	configPath, _ := flags.GetString("config")
	cfg, err := cfgpkg.Load(configPath)
	if err != nil {
		return nil, err
	}
	if v, _ := flags.GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := flags.GetString("db"); v != "" {
		cfg.DefaultDatabase = v
	}
	if v, _ := flags.GetString("store"); v != "" {
		cfg.DefaultStore = v
	}
	if v, _ := flags.GetInt("debounce-ms"); v > 0 {
		cfg.DebounceMs = v
	}
	if v, _ := flags.GetString("fsync"); v != "" {
		cfg.Fsync = v
	}
	if v, _ := flags.GetInt("fsync-interval-ms"); v > 0 {
		cfg.FsyncIntervalMs = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}

	logger, err := logpkg.ApplyConfig(&logpkg.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	// Pebble logs through the stdlib logger; keep it in one pipeline.
	logpkg.RedirectStdLog(logger)

	mode := pebblestore.FsyncModeAlways
	switch cfg.Fsync {
	case "", "always":
	case "interval":
		mode = pebblestore.FsyncModeInterval
	case "never":
		mode = pebblestore.FsyncModeNever
	default:
		return nil, fmt.Errorf("invalid fsync mode %q; use always|interval|never", cfg.Fsync)
	}
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = cfgpkg.DefaultDataDir()
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       dataDir,
		Fsync:         mode,
		FsyncInterval: time.Duration(cfg.FsyncIntervalMs) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	engine, err := session.New(session.Options{Storage: db, Config: cfg, Logger: logger})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &kvcmd.Handle{
		Engine: engine,
		NS:     namespace.Namespace{Database: cfg.DefaultDatabase, Store: cfg.DefaultStore},
		Close: func() {
			_ = engine.Close()
			_ = db.Close()
		},
	}, nil
}
