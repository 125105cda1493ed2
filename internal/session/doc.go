// Package session implements the synchronization engine's consumer
// surface. An Engine owns the shared cache, per-key write queues,
// subscription fan-out, and debounce scheduler; a Session is one
// consumer's binding to a key.
//
// A session is usable the moment it is acquired: reads serve the
// shared cache entry or the session's default while the durable load
// settles in the background. Writes apply locally at once, then
// persist through a trailing-edge debounce window into the key's FIFO
// write queue; sibling sessions are notified only after the store has
// confirmed the write. Values are normalized to the JSON data model so
// change detection is stable across write and read-back.
package session
