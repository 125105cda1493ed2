// Package writequeue implements the per-key write-ordering queue.
//
// The engine funnels every durable operation for a key (put, delete)
// through Enqueue. Guarantees:
//
//   - operations for one key execute strictly in submission order
//   - at most one operation per key is in flight at any time
//   - different keys drain independently and concurrently
//   - an operation's failure is delivered to its own submitter only;
//     the queue is never poisoned and successors still execute
//
// Barrier provides a drain point used by Session.Flush and tests.
package writequeue
