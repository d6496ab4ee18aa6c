package store

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - ids/{name}
// - logs/{id_be8}
// - objs/{id_be8}

var (
	idsPrefix  = []byte("ids/")
	logsPrefix = []byte("logs/")
	objsPrefix = []byte("objs/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyID builds the counter key for a named ID sequence.
func KeyID(name string) []byte {
	k := make([]byte, 0, len(idsPrefix)+len(name))
	k = append(k, idsPrefix...)
	k = append(k, name...)
	return k
}

// KeyLog builds the document key for a Log, big-endian so range scans walk
// the audit trail in creation order.
func KeyLog(id LogID) []byte {
	k := make([]byte, 0, len(logsPrefix)+8)
	k = append(k, logsPrefix...)
	return appendBE8(k, uint64(id))
}

// KeyObj builds the document key for an Object.
func KeyObj(id ObjID) []byte {
	k := make([]byte, 0, len(objsPrefix)+8)
	k = append(k, objsPrefix...)
	return appendBE8(k, uint64(id))
}
