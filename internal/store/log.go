package store

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/crides/sched/internal/storage/pebble"
	logpkg "github.com/crides/sched/pkg/log"
)

// CreateLog appends a new audit Log and dispatches the persisted document to
// matching handlers. Attribute keys must not contain '.'. This is the audit
// base case: creating a Log is never itself audited.
func (s *Store) CreateLog(ctx context.Context, typ string, attrs map[string]string) (LogID, error) {
	for k := range attrs {
		if err := validateKey(k); err != nil {
			return 0, err
		}
	}
	if err := checkDepth(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	log, err := func() (*Log, error) {
		b := s.db.NewBatch()
		defer b.Close()
		id, err := s.stageLogLocked(b, typ, attrs)
		if err != nil {
			return nil, err
		}
		if err := s.commitLocked(ctx, b, "log.create"); err != nil {
			return nil, err
		}
		// Read back so handlers observe the persisted shape, not the input.
		return s.getLogLocked(id)
	}()
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.logger.Debug("log created", logpkg.Int64("id", int64(log.ID)), logpkg.Str("type", log.Type))
	s.dispatcher.Dispatch(ctx, log)
	return log.ID, nil
}

// SetLogAttr sets attrs.<key> on a Log only if the key is currently absent
// (first-write-wins). A present key, like a missing Log, is a silent data
// no-op. Either way a log.set_attr audit Log is appended and dispatched;
// no-op writes are audited too.
func (s *Store) SetLogAttr(ctx context.Context, id LogID, key, val string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := checkDepth(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	audit, err := func() (*Log, error) {
		b := s.db.NewBatch()
		defer b.Close()

		target, err := s.getLogLocked(id)
		switch err.(type) {
		case nil:
			if _, exists := target.Attrs[key]; !exists {
				target.Attrs[key] = val
				if err := s.stagePutLogLocked(b, target); err != nil {
					return nil, err
				}
			}
		case *InvalidLogIDError:
			// Conditional write against a missing document matches nothing;
			// the attempt is still audited below.
		default:
			return nil, err
		}

		auditID, err := s.stageLogLocked(b, "log.set_attr", map[string]string{
			"id":   formatID(int64(id)),
			"attr": "attrs." + key,
		})
		if err != nil {
			return nil, err
		}
		if err := s.commitLocked(ctx, b, "log.set_attr"); err != nil {
			return nil, err
		}
		return s.getLogLocked(auditID)
	}()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, audit)
	return nil
}

// GetLog returns the Log with the given ID.
func (s *Store) GetLog(ctx context.Context, id LogID) (*Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLogLocked(id)
}

// stageLogLocked allocates the next Log ID and stages the document into b.
// The attrs field is omitted from the stored document when empty.
func (s *Store) stageLogLocked(b *pebble.Batch, typ string, attrs map[string]string) (LogID, error) {
	n, err := s.nextIDLocked(b, seqLogs)
	if err != nil {
		return 0, err
	}
	doc := Log{ID: LogID(n), Type: typ, Time: s.now().UTC()}
	if len(attrs) > 0 {
		doc.Attrs = cloneAttrs(attrs)
	}
	if err := s.stagePutLogLocked(b, &doc); err != nil {
		return 0, err
	}
	return doc.ID, nil
}

func (s *Store) stagePutLogLocked(b *pebble.Batch, doc *Log) error {
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		return &StoreUnavailableError{Op: "log.encode", Err: err}
	}
	if err := b.Set(KeyLog(doc.ID), buf, nil); err != nil {
		return &StoreUnavailableError{Op: "log.put", Err: err}
	}
	return nil
}

func (s *Store) getLogLocked(id LogID) (*Log, error) {
	buf, err := s.db.Get(KeyLog(id))
	switch {
	case err == nil:
	case pebblestore.IsNotFound(err):
		return nil, &InvalidLogIDError{ID: id}
	default:
		return nil, &StoreUnavailableError{Op: "log.get", Err: err}
	}
	var l Log
	if err := json.Unmarshal(buf, &l); err != nil {
		return nil, &CorruptRecordError{Key: "logs/" + formatID(int64(id)), Err: err}
	}
	if l.Attrs == nil {
		l.Attrs = map[string]string{}
	}
	return &l, nil
}

func (s *Store) commitLocked(ctx context.Context, b *pebble.Batch, op string) error {
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return &StoreUnavailableError{Op: op, Err: err}
	}
	return nil
}
