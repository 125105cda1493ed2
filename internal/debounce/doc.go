// Package debounce implements the trailing-edge write coalescer: rapid
// repeated schedules for the same key collapse into one flush carrying
// the last value, fired only after the configured quiet gap. Each new
// schedule implicitly cancels and restarts the key's timer.
package debounce
