package pebblestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/rzbill/keysync/internal/namespace"
	"github.com/rzbill/keysync/internal/storage"
)

// Meta holds namespace metadata.
type Meta struct {
	Namespace   namespace.Namespace `json:"namespace"`
	CreatedAtMs int64               `json:"createdAtMs"`
}

// Open implements storage.Adapter. It ensures a namespace meta record
// exists (idempotent) and returns the collection view over it.
func (db *DB) Open(ctx context.Context, ns namespace.Namespace) (storage.Collection, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := db.ensureMeta(ns); err != nil {
		return nil, errors.Join(storage.ErrUnavailable, err)
	}
	return &collection{db: db, ns: ns}, nil
}

// ensureMeta creates the namespace meta record if absent, returning the
// effective meta. Returns existing if already present; a corrupted
// record is rewritten.
func (db *DB) ensureMeta(ns namespace.Namespace) (Meta, error) {
	key := metaKey(ns)
	if b, err := db.get(key); err == nil && len(b) > 0 {
		var m Meta
		if err := json.Unmarshal(b, &m); err == nil {
			return m, nil
		}
	}
	m := Meta{Namespace: ns, CreatedAtMs: time.Now().UnixMilli()}
	b, err := json.Marshal(m)
	if err != nil {
		return Meta{}, err
	}
	if err := db.set(key, b); err != nil {
		return Meta{}, err
	}
	return m, nil
}

type collection struct {
	db *DB
	ns namespace.Namespace
}

func (c *collection) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.ReadFailed(key, err)
	}
	b, err := c.db.get(entryKey(c.ns, key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.ReadFailed(key, err)
	}
	return b, nil
}

func (c *collection) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return storage.WriteFailed(key, err)
	}
	if err := c.db.set(entryKey(c.ns, key), value); err != nil {
		return storage.WriteFailed(key, err)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return storage.WriteFailed(key, err)
	}
	// Pebble deletes are blind; an absent key is not an error.
	if err := c.db.delete(entryKey(c.ns, key)); err != nil {
		return storage.WriteFailed(key, err)
	}
	return nil
}
