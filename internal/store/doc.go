// Package store implements the sched storage-and-dispatch engine.
//
// Two record kinds live in Pebble as JSON documents: immutable audit Logs and
// mutable graph Objects. Every state-changing Object operation (and the one
// Log mutation) commits the mutation and exactly one descriptive audit Log in
// a single batch, then hands the persisted Log to the event dispatcher, which
// runs every registered handler whose pattern matches the Log type.
//
// Keyspace:
//   - ids/{name}     per-sequence counter, 8 bytes big-endian
//   - logs/{id_be8}  Log document
//   - objs/{id_be8}  Object document
//
// Concurrency: one mutex serializes all operations, including the
// counter read-modify-write. Dispatch runs after the lock is released, so
// handlers may call back into the store; nested depth rides on the context
// and is capped at MaxDispatchDepth (see dispatch.go).
package store
