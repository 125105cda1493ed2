// Package id provides a 128-bit, lexicographically sortable identifier
// used for subscription handles and write-task identifiers.
//
// The ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes
// sequence], so byte-wise comparison preserves chronological order and
// IDs minted within the same millisecond remain strictly increasing by
// sequence. The Generator guards against clock regression and sequence
// overflow; see Generator.Next.
package id
