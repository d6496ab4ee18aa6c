package store

import (
	"encoding/binary"
	"errors"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/crides/sched/internal/storage/pebble"
)

// Sequence names for the two independent ID spaces.
const (
	seqLogs = "logs"
	seqObjs = "objs"
)

var errShortCounter = errors.New("counter value is not 8 bytes")

// nextIDLocked bumps the named sequence and stages the new counter value into
// b. The first issued ID is 1. The read-modify-write is safe because every
// caller holds the facade lock; the bump becomes durable only when the caller
// commits b alongside the document the ID was issued for.
func (s *Store) nextIDLocked(b *pebble.Batch, name string) (int64, error) {
	key := KeyID(name)
	var n int64
	cur, err := s.db.Get(key)
	switch {
	case err == nil:
		if len(cur) != 8 {
			return 0, &CorruptRecordError{Key: string(key), Err: errShortCounter}
		}
		n = int64(binary.BigEndian.Uint64(cur))
	case pebblestore.IsNotFound(err):
		n = 0
	default:
		return 0, &StoreUnavailableError{Op: "ids.get", Err: err}
	}
	n++
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	if err := b.Set(key, buf[:], nil); err != nil {
		return 0, &StoreUnavailableError{Op: "ids.set", Err: err}
	}
	return n, nil
}
