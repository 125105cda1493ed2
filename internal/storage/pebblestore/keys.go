package pebblestore

import "github.com/rzbill/keysync/internal/namespace"

// Keyspace layout:
//
//	kvmeta/{database}/{store}       - namespace metadata (JSON)
//	kv/{database}/{store}/{key}     - entry records
var (
	metaPrefix  = []byte("kvmeta/")
	entryPrefix = []byte("kv/")
)

// metaKey builds the metadata key for a namespace.
func metaKey(ns namespace.Namespace) []byte {
	k := make([]byte, 0, len(metaPrefix)+len(ns.Database)+1+len(ns.Store))
	k = append(k, metaPrefix...)
	k = append(k, ns.Database...)
	k = append(k, '/')
	k = append(k, ns.Store...)
	return k
}

// entryKey builds the record key for one logical value.
func entryKey(ns namespace.Namespace, key string) []byte {
	k := make([]byte, 0, len(entryPrefix)+len(ns.Database)+1+len(ns.Store)+1+len(key))
	k = append(k, entryPrefix...)
	k = append(k, ns.Database...)
	k = append(k, '/')
	k = append(k, ns.Store...)
	k = append(k, '/')
	k = append(k, key...)
	return k
}
