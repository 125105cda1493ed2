// Package pebblestore implements the storage.Adapter contract on
// cockroachdb/pebble.
//
// Keys are laid out for lexical range scans:
//
//	kvmeta/{database}/{store}    (namespace metadata, JSON)
//	kv/{database}/{store}/{key}  (entry records)
//
// Durability is tunable via FsyncMode: always (sync each write),
// interval (Pebble group-commit window), or never. The engine's write
// queue serializes writes per key above this layer, so the wrapper only
// needs single-key operations.
package pebblestore
