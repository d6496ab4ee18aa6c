// Package pebblestore wraps Pebble for the sched store.
//
// It narrows the Pebble API to Get/Set/Delete, batches, and iterators, and
// owns the WAL fsync policy so callers never pass sync flags themselves.
// Document atomicity in the store comes from committing each logical
// operation as one batch here.
package pebblestore
