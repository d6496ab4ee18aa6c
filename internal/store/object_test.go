package store

import (
	"context"
	"errors"
	"testing"
)

func TestCreateObjectRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, err := s.CreateObject(ctx, "report", "task")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 1 {
		t.Fatalf("first object ID = %d", id)
	}
	o, err := s.GetObject(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Name != "report" || o.Type != "task" || o.Desc != "" {
		t.Fatalf("got %+v", o)
	}
	if len(o.Deps) != 0 || len(o.Subs) != 0 || len(o.Refs) != 0 || len(o.Attrs) != 0 {
		t.Fatalf("new object not empty: %+v", o)
	}
	if o.Deps == nil || o.Subs == nil || o.Refs == nil || o.Attrs == nil {
		t.Fatalf("sets must be non-nil: %+v", o)
	}
}

func TestObjectSequenceIndependentOfLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.CreateLog(ctx, "test.noise", nil); err != nil {
		t.Fatalf("create log: %v", err)
	}
	id, err := s.CreateObject(ctx, "a", "task")
	if err != nil {
		t.Fatalf("create obj: %v", err)
	}
	if id != 1 {
		t.Fatalf("object sequence not independent: first obj ID = %d", id)
	}
}

func TestCreateObjectEmitsAudit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, err := s.CreateObject(ctx, "a", "task")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	audit, err := s.GetLog(ctx, 1)
	if err != nil {
		t.Fatalf("get audit: %v", err)
	}
	if audit.Type != "obj.create" || audit.Attrs["id"] != "1" {
		t.Fatalf("audit = %+v", audit)
	}
	_ = id
}

func TestSetDescRecordsOldOnlyWhenPresent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateObject(ctx, "a", "task")

	if err := s.SetObjectDesc(ctx, id, "first"); err != nil {
		t.Fatalf("set desc: %v", err)
	}
	audit, err := s.GetLog(ctx, 2)
	if err != nil {
		t.Fatalf("get audit: %v", err)
	}
	if audit.Type != "obj.set_desc" || audit.Attrs["new"] != "first" {
		t.Fatalf("audit = %+v", audit)
	}
	if _, ok := audit.Attrs["old"]; ok {
		t.Fatalf("old recorded on first set: %v", audit.Attrs)
	}

	if err := s.SetObjectDesc(ctx, id, "second"); err != nil {
		t.Fatalf("replace desc: %v", err)
	}
	audit2, err := s.GetLog(ctx, 3)
	if err != nil {
		t.Fatalf("get audit: %v", err)
	}
	if audit2.Attrs["old"] != "first" || audit2.Attrs["new"] != "second" {
		t.Fatalf("audit = %+v", audit2)
	}
	o, _ := s.GetObject(ctx, id)
	if o.Desc != "second" {
		t.Fatalf("desc = %q", o.Desc)
	}
}

func TestSetDescMissingObject(t *testing.T) {
	s := newTestStore(t)
	err := s.SetObjectDesc(context.Background(), 7, "x")
	var invalid *InvalidObjIDError
	if !errors.As(err, &invalid) || invalid.ID != 7 {
		t.Fatalf("want InvalidObjIDError{7}, got %v", err)
	}
}

func TestRelationAddDel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateObject(ctx, "a", "task")
	b, _ := s.CreateObject(ctx, "b", "task")

	if err := s.AddDep(ctx, a, b); err != nil {
		t.Fatalf("add dep: %v", err)
	}
	o, _ := s.GetObject(ctx, a)
	if len(o.Deps) != 1 || o.Deps[0] != b {
		t.Fatalf("deps = %v", o.Deps)
	}
	if len(o.Subs) != 0 || len(o.Refs) != 0 {
		t.Fatalf("relations not independent: %+v", o)
	}

	if err := s.DelDep(ctx, a, b); err != nil {
		t.Fatalf("del dep: %v", err)
	}
	o, _ = s.GetObject(ctx, a)
	if len(o.Deps) != 0 {
		t.Fatalf("deps after del = %v", o.Deps)
	}
}

func TestRelationSetSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateObject(ctx, "a", "task")

	// Double add: one member, two audit logs (1 is obj.create).
	if err := s.AddSub(ctx, a, 5); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddSub(ctx, a, 5); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	o, _ := s.GetObject(ctx, a)
	if len(o.Subs) != 1 {
		t.Fatalf("subs = %v", o.Subs)
	}
	for _, auditID := range []LogID{2, 3} {
		audit, err := s.GetLog(ctx, auditID)
		if err != nil {
			t.Fatalf("audit %d missing: %v", auditID, err)
		}
		if audit.Type != "obj.add_sub" || audit.Attrs["sub"] != "5" || audit.Attrs["id"] != "1" {
			t.Fatalf("audit = %+v", audit)
		}
	}
}

func TestDelAbsentRelationStillAudited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateObject(ctx, "a", "task")
	if err := s.DelRef(ctx, a, 9); err != nil {
		t.Fatalf("del absent: %v", err)
	}
	audit, err := s.GetLog(ctx, 2)
	if err != nil {
		t.Fatalf("no audit for no-op del: %v", err)
	}
	if audit.Type != "obj.del_ref" || audit.Attrs["ref"] != "9" {
		t.Fatalf("audit = %+v", audit)
	}
}

func TestRelationMissingObjectStillAudited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.AddDep(ctx, 100, 200); err != nil {
		t.Fatalf("add on missing object: %v", err)
	}
	audit, err := s.GetLog(ctx, 1)
	if err != nil {
		t.Fatalf("get audit: %v", err)
	}
	if audit.Type != "obj.add_dep" || audit.Attrs["id"] != "100" || audit.Attrs["dep"] != "200" {
		t.Fatalf("audit = %+v", audit)
	}
}

func TestObjectAttrOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateObject(ctx, "a", "task")

	if err := s.SetObjectAttr(ctx, id, "state", "open"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetObjectAttr(ctx, id, "state", "done"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	o, _ := s.GetObject(ctx, id)
	if o.Attrs["state"] != "done" {
		t.Fatalf("attrs = %v", o.Attrs)
	}

	first, _ := s.GetLog(ctx, 2)
	if first.Attrs["new"] != "open" || first.Attrs["key"] != "state" {
		t.Fatalf("first audit = %+v", first)
	}
	if _, ok := first.Attrs["old"]; ok {
		t.Fatalf("old recorded on first set: %v", first.Attrs)
	}
	second, _ := s.GetLog(ctx, 3)
	if second.Attrs["old"] != "open" || second.Attrs["new"] != "done" {
		t.Fatalf("second audit = %+v", second)
	}
}

func TestObjectAttrDottedKeyRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateObject(ctx, "a", "task")

	var invalid *InvalidKeyError
	if err := s.SetObjectAttr(ctx, id, "a.b", "x"); !errors.As(err, &invalid) {
		t.Fatalf("set: want InvalidKeyError, got %v", err)
	}
	if err := s.DelObjectAttr(ctx, id, "a.b"); !errors.As(err, &invalid) {
		t.Fatalf("del: want InvalidKeyError, got %v", err)
	}
	// Neither rejected call audited anything.
	if _, err := s.GetLog(ctx, 2); err == nil {
		t.Fatalf("rejected call was audited")
	}
}

func TestDelAttrAuditAsymmetry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.CreateObject(ctx, "a", "task")

	// Deleting a key that was never set emits no audit log.
	if err := s.DelObjectAttr(ctx, id, "ghost"); err != nil {
		t.Fatalf("del absent attr: %v", err)
	}
	if _, err := s.GetLog(ctx, 2); err == nil {
		t.Fatalf("no-op del_attr was audited")
	}

	if err := s.SetObjectAttr(ctx, id, "state", "open"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.DelObjectAttr(ctx, id, "state"); err != nil {
		t.Fatalf("del: %v", err)
	}
	audit, err := s.GetLog(ctx, 3)
	if err != nil {
		t.Fatalf("del of existing attr not audited: %v", err)
	}
	if audit.Type != "obj.del_attr" || audit.Attrs["key"] != "state" || audit.Attrs["old"] != "open" {
		t.Fatalf("audit = %+v", audit)
	}
	o, _ := s.GetObject(ctx, id)
	if _, ok := o.Attrs["state"]; ok {
		t.Fatalf("attr survived delete: %v", o.Attrs)
	}
}

func TestGetObjectMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetObject(context.Background(), 3)
	var invalid *InvalidObjIDError
	if !errors.As(err, &invalid) || invalid.ID != 3 {
		t.Fatalf("want InvalidObjIDError{3}, got %v", err)
	}
}
