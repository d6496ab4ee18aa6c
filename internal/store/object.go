package store

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/crides/sched/internal/storage/pebble"
	logpkg "github.com/crides/sched/pkg/log"
)

// Relation selects one of the three independent Object reference sets.
type Relation int

const (
	RelDep Relation = iota
	RelSub
	RelRef
)

// String returns the attribute key used in audit Logs for this relation.
func (r Relation) String() string {
	switch r {
	case RelDep:
		return "dep"
	case RelSub:
		return "sub"
	case RelRef:
		return "ref"
	}
	return "unknown"
}

func (r Relation) set(o *Object) *[]ObjID {
	switch r {
	case RelDep:
		return &o.Deps
	case RelSub:
		return &o.Subs
	default:
		return &o.Refs
	}
}

// CreateObject persists a minimal Object document and audits obj.create.
func (s *Store) CreateObject(ctx context.Context, name, typ string) (ObjID, error) {
	if err := checkDepth(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	id, audit, err := func() (ObjID, *Log, error) {
		b := s.db.NewBatch()
		defer b.Close()
		n, err := s.nextIDLocked(b, seqObjs)
		if err != nil {
			return 0, nil, err
		}
		doc := Object{ID: ObjID(n), Name: name, Type: typ}
		if err := s.stagePutObjLocked(b, &doc); err != nil {
			return 0, nil, err
		}
		auditID, err := s.stageLogLocked(b, "obj.create", map[string]string{
			"id": formatID(n),
		})
		if err != nil {
			return 0, nil, err
		}
		if err := s.commitLocked(ctx, b, "obj.create"); err != nil {
			return 0, nil, err
		}
		audit, err := s.getLogLocked(auditID)
		return doc.ID, audit, err
	}()
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	s.logger.Debug("object created", logpkg.Int64("id", int64(id)), logpkg.Str("name", name), logpkg.Str("type", typ))
	s.dispatcher.Dispatch(ctx, audit)
	return id, nil
}

// SetObjectDesc replaces the description. The audit Log records the new value
// and, when a previous description existed, the old one.
func (s *Store) SetObjectDesc(ctx context.Context, id ObjID, desc string) error {
	return s.mutateObject(ctx, id, "obj.set_desc", func(o *Object) (map[string]string, bool) {
		attrs := map[string]string{"id": formatID(int64(id)), "new": desc}
		if o.Desc != "" {
			attrs["old"] = o.Desc
		}
		o.Desc = desc
		return attrs, true
	})
}

// AddRelation adds target to the given relation set of object id. Adding an
// existing member is a data no-op; the attempt is always audited, and so is
// an add on a missing object (observed behavior, preserved).
func (s *Store) AddRelation(ctx context.Context, id ObjID, rel Relation, target ObjID) error {
	return s.relateObject(ctx, id, "obj.add_"+rel.String(), rel, target, true)
}

// DelRelation removes target from the given relation set of object id.
// Removal of an absent member is a data no-op but is still audited.
func (s *Store) DelRelation(ctx context.Context, id ObjID, rel Relation, target ObjID) error {
	return s.relateObject(ctx, id, "obj.del_"+rel.String(), rel, target, false)
}

// AddDep adds target to the dependency set of object id.
func (s *Store) AddDep(ctx context.Context, id, target ObjID) error {
	return s.AddRelation(ctx, id, RelDep, target)
}

// AddSub adds target to the subordinate set of object id.
func (s *Store) AddSub(ctx context.Context, id, target ObjID) error {
	return s.AddRelation(ctx, id, RelSub, target)
}

// AddRef adds target to the reference set of object id.
func (s *Store) AddRef(ctx context.Context, id, target ObjID) error {
	return s.AddRelation(ctx, id, RelRef, target)
}

// DelDep removes target from the dependency set of object id.
func (s *Store) DelDep(ctx context.Context, id, target ObjID) error {
	return s.DelRelation(ctx, id, RelDep, target)
}

// DelSub removes target from the subordinate set of object id.
func (s *Store) DelSub(ctx context.Context, id, target ObjID) error {
	return s.DelRelation(ctx, id, RelSub, target)
}

// DelRef removes target from the reference set of object id.
func (s *Store) DelRef(ctx context.Context, id, target ObjID) error {
	return s.DelRelation(ctx, id, RelRef, target)
}

// SetObjectAttr sets attrs.<key> unconditionally (overwrite allowed, unlike
// Log attrs). The audit Log records the new value and, when the key already
// existed, the old one.
func (s *Store) SetObjectAttr(ctx context.Context, id ObjID, key, val string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.mutateObject(ctx, id, "obj.set_attr", func(o *Object) (map[string]string, bool) {
		attrs := map[string]string{"key": key, "id": formatID(int64(id)), "new": val}
		if old, ok := o.Attrs[key]; ok {
			attrs["old"] = old
		}
		if o.Attrs == nil {
			o.Attrs = map[string]string{}
		}
		o.Attrs[key] = val
		return attrs, true
	})
}

// DelObjectAttr removes attrs.<key> if present. Unlike every other mutation,
// a no-op delete emits no audit Log (observed asymmetry, preserved).
func (s *Store) DelObjectAttr(ctx context.Context, id ObjID, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.mutateObject(ctx, id, "obj.del_attr", func(o *Object) (map[string]string, bool) {
		old, ok := o.Attrs[key]
		if !ok {
			return nil, false
		}
		delete(o.Attrs, key)
		return map[string]string{"id": formatID(int64(id)), "key": key, "old": old}, true
	})
}

// GetObject returns the Object with the given ID. Relation sets and attrs
// are never nil.
func (s *Store) GetObject(ctx context.Context, id ObjID) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getObjLocked(id)
}

// mutateObject runs one audited read-modify-write cycle on an existing
// Object. mutate returns the audit Log attrs and whether anything should be
// committed; returning false skips both the write and the audit Log.
// A missing Object fails with InvalidObjIDError.
func (s *Store) mutateObject(ctx context.Context, id ObjID, logType string, mutate func(*Object) (map[string]string, bool)) error {
	if err := checkDepth(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	audit, err := func() (*Log, error) {
		obj, err := s.getObjLocked(id)
		if err != nil {
			return nil, err
		}
		attrs, commit := mutate(obj)
		if !commit {
			return nil, nil
		}
		b := s.db.NewBatch()
		defer b.Close()
		if err := s.stagePutObjLocked(b, obj); err != nil {
			return nil, err
		}
		auditID, err := s.stageLogLocked(b, logType, attrs)
		if err != nil {
			return nil, err
		}
		if err := s.commitLocked(ctx, b, logType); err != nil {
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

// relateObject implements the add/del relation operations. The audit Log is
// appended even when the object is missing or the set did not change.
func (s *Store) relateObject(ctx context.Context, id ObjID, logType string, rel Relation, target ObjID, add bool) error {
	if err := checkDepth(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	audit, err := func() (*Log, error) {
		b := s.db.NewBatch()
		defer b.Close()

		obj, err := s.getObjLocked(id)
		switch err.(type) {
		case nil:
			set := rel.set(obj)
			var changed bool
			if add {
				*set, changed = addToSet(*set, target)
			} else {
				*set, changed = pull(*set, target)
			}
			if changed {
				if err := s.stagePutObjLocked(b, obj); err != nil {
					return nil, err
				}
			}
		case *InvalidObjIDError:
			// No document to touch; the attempt is still audited.
		default:
			return nil, err
		}

		auditID, err := s.stageLogLocked(b, logType, map[string]string{
			"id":         formatID(int64(id)),
			rel.String(): formatID(int64(target)),
		})
		if err != nil {
			return nil, err
		}
		if err := s.commitLocked(ctx, b, logType); err != nil {
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

func (s *Store) stagePutObjLocked(b *pebble.Batch, doc *Object) error {
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		return &StoreUnavailableError{Op: "obj.encode", Err: err}
	}
	if err := b.Set(KeyObj(doc.ID), buf, nil); err != nil {
		return &StoreUnavailableError{Op: "obj.put", Err: err}
	}
	return nil
}

func (s *Store) getObjLocked(id ObjID) (*Object, error) {
	buf, err := s.db.Get(KeyObj(id))
	switch {
	case err == nil:
	case pebblestore.IsNotFound(err):
		return nil, &InvalidObjIDError{ID: id}
	default:
		return nil, &StoreUnavailableError{Op: "obj.get", Err: err}
	}
	var o Object
	if err := json.Unmarshal(buf, &o); err != nil {
		return nil, &CorruptRecordError{Key: "objs/" + formatID(int64(id)), Err: err}
	}
	o.normalize()
	return &o, nil
}
