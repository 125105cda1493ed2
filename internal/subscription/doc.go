// Package subscription implements the notification fan-out: a
// process-wide registry from entry key to the set of interested
// callbacks, invoked synchronously once a write is confirmed durable.
// Subscribers may attach a CEL filter to receive only matching events.
package subscription
