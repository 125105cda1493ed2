// Package storage defines the durable-store contract the engine depends
// on: namespaced collections with asynchronous get/put/delete by key,
// and the error taxonomy (ErrUnavailable, ErrNotFound, wrapped
// read/write faults). The concrete Pebble-backed implementation lives in
// the pebblestore subpackage.
package storage
