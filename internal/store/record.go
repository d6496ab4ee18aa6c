package store

import (
	"strconv"
	"strings"
	"time"
)

// LogID identifies a Log within its sequence.
type LogID int64

// ObjID identifies an Object within its sequence.
type ObjID int64

// Log is one immutable audit record. Attrs is omitted from the stored
// document when empty; keep that shape stable.
type Log struct {
	ID    LogID             `json:"id"`
	Type  string            `json:"type"`
	Time  time.Time         `json:"time"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Object is a mutable graph node. Deps, Subs and Refs carry set semantics:
// membership only, no duplicates, insertion-ordered on disk. Referenced IDs
// are not checked for existence. An empty Desc counts as unset.
type Object struct {
	ID    ObjID             `json:"id"`
	Name  string            `json:"name"`
	Type  string            `json:"type"`
	Desc  string            `json:"desc,omitempty"`
	Deps  []ObjID           `json:"deps,omitempty"`
	Subs  []ObjID           `json:"subs,omitempty"`
	Refs  []ObjID           `json:"refs,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// normalize replaces nil collections with empty ones so callers never see
// nil sets or attr maps.
func (o *Object) normalize() {
	if o.Deps == nil {
		o.Deps = []ObjID{}
	}
	if o.Subs == nil {
		o.Subs = []ObjID{}
	}
	if o.Refs == nil {
		o.Refs = []ObjID{}
	}
	if o.Attrs == nil {
		o.Attrs = map[string]string{}
	}
}

// validateKey rejects attribute keys containing the reserved '.' separator.
func validateKey(key string) error {
	if strings.Contains(key, ".") {
		return &InvalidKeyError{Key: key}
	}
	return nil
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func cloneAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// addToSet appends v if absent. Reports whether the set changed.
func addToSet(set []ObjID, v ObjID) ([]ObjID, bool) {
	for _, m := range set {
		if m == v {
			return set, false
		}
	}
	return append(set, v), true
}

// pull removes v if present. Reports whether the set changed.
func pull(set []ObjID, v ObjID) ([]ObjID, bool) {
	for i, m := range set {
		if m == v {
			return append(set[:i], set[i+1:]...), true
		}
	}
	return set, false
}
