package namespace

import (
	"errors"
	"strings"
)

// Namespace identifies an isolated collection of keys in the durable
// store. It is a two-part name: a database and a store within it. Keys
// are unique only within a namespace.
type Namespace struct {
	Database string `json:"database"`
	Store    string `json:"store"`
}

// Default returns the namespace used when callers do not specify one.
func Default() Namespace {
	return Namespace{Database: "keysync", Store: "state"}
}

// String renders the namespace as "database/store".
func (n Namespace) String() string { return n.Database + "/" + n.Store }

// ErrInvalid reports a namespace whose parts are empty or contain the
// separator characters reserved for keyspace construction.
var ErrInvalid = errors.New("namespace: invalid name")

// Validate checks both parts are non-empty and free of '/' and '|'.
func (n Namespace) Validate() error {
	for _, part := range []string{n.Database, n.Store} {
		if part == "" {
			return ErrInvalid
		}
		if strings.ContainsAny(part, "/|") {
			return ErrInvalid
		}
	}
	return nil
}

// EntryKey builds the process-wide composite key for one logical value,
// "database/store|key". Cache, write queue, and subscription registries
// are all keyed by it.
func (n Namespace) EntryKey(key string) string {
	return n.String() + "|" + key
}
