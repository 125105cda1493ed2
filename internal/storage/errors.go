package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the environment cannot provide persistent
	// storage for the requested namespace. Fatal to all operations on
	// that namespace; surfaced to the caller, never retried here.
	ErrUnavailable = errors.New("storage: unavailable")

	// ErrNotFound marks an absent key on Get.
	ErrNotFound = errors.New("storage: key not found")
)

// ReadFailed wraps an I/O fault from Get so callers can distinguish
// read faults from absence.
func ReadFailed(key string, err error) error {
	return fmt.Errorf("storage: read %q: %w", key, err)
}

// WriteFailed wraps an I/O fault from Put or Delete.
func WriteFailed(key string, err error) error {
	return fmt.Errorf("storage: write %q: %w", key, err)
}
