// Package log implements the structured logging pipeline shared by all
// keysync components.
//
// Loggers carry fields, a formatter, and one or more outputs. Components
// receive a Logger by injection and tag their entries with a component
// field:
//
//	logger := log.NewLogger(log.WithLevel(log.DebugLevel))
//	logger = logger.WithComponent("session")
//	logger.Info("acquired", log.Str("key", key), log.Int64("dur_ms", ms))
//
// ApplyConfig builds a logger from level/format strings, and
// RedirectStdLog captures stdlib log output (e.g. from Pebble) into the
// same pipeline.
package log
