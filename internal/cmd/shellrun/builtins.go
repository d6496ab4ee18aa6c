package shellrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/crides/sched/internal/script"
	"github.com/crides/sched/internal/shell"
	"github.com/crides/sched/internal/store"
)

// RegisterBuiltins defines the stock command set over the store facade.
// Front-end scripts may redefine or extend these at runtime via the same
// Define surface.
func RegisterBuiltins(sh *shell.Shell, st *store.Store, out io.Writer) {
	sh.Define("new-log", "new-log <type> [key=value ...]", func(ctx context.Context, args []string) error {
		if len(args) < 1 {
			return errors.New("usage: new-log <type> [key=value ...]")
		}
		attrs, err := parseAttrs(args[1:])
		if err != nil {
			return err
		}
		id, err := st.CreateLog(ctx, args[0], attrs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "log %d\n", id)
		return nil
	})

	sh.Define("log-set-attr", "log-set-attr <id> <key> <value...>", func(ctx context.Context, args []string) error {
		if len(args) < 3 {
			return errors.New("usage: log-set-attr <id> <key> <value...>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return st.SetLogAttr(ctx, store.LogID(id), args[1], strings.Join(args[2:], " "))
	})

	sh.Define("get-log", "get-log <id>", func(ctx context.Context, args []string) error {
		if len(args) != 1 {
			return errors.New("usage: get-log <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		l, err := st.GetLog(ctx, store.LogID(id))
		if err != nil {
			return err
		}
		return printJSON(out, l)
	})

	sh.Define("new-obj", "new-obj <name> <type> [desc...]", func(ctx context.Context, args []string) error {
		if len(args) < 2 {
			return errors.New("usage: new-obj <name> <type> [desc...]")
		}
		id, err := st.CreateObject(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if len(args) > 2 {
			if err := st.SetObjectDesc(ctx, id, strings.Join(args[2:], " ")); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "obj %d\n", id)
		return nil
	})

	sh.Define("get-obj", "get-obj <id>", func(ctx context.Context, args []string) error {
		if len(args) != 1 {
			return errors.New("usage: get-obj <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		o, err := st.GetObject(ctx, store.ObjID(id))
		if err != nil {
			return err
		}
		return printJSON(out, o)
	})

	sh.Define("set-desc", "set-desc <id> <desc...>", func(ctx context.Context, args []string) error {
		if len(args) < 2 {
			return errors.New("usage: set-desc <id> <desc...>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return st.SetObjectDesc(ctx, store.ObjID(id), strings.Join(args[1:], " "))
	})

	sh.Define("set-attr", "set-attr <id> <key> <value...>", func(ctx context.Context, args []string) error {
		if len(args) < 3 {
			return errors.New("usage: set-attr <id> <key> <value...>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return st.SetObjectAttr(ctx, store.ObjID(id), args[1], strings.Join(args[2:], " "))
	})

	sh.Define("del-attr", "del-attr <id> <key>", func(ctx context.Context, args []string) error {
		if len(args) != 2 {
			return errors.New("usage: del-attr <id> <key>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return st.DelObjectAttr(ctx, store.ObjID(id), args[1])
	})

	relCmds := []struct {
		name string
		rel  store.Relation
		add  bool
	}{
		{"add-dep", store.RelDep, true},
		{"add-sub", store.RelSub, true},
		{"add-ref", store.RelRef, true},
		{"del-dep", store.RelDep, false},
		{"del-sub", store.RelSub, false},
		{"del-ref", store.RelRef, false},
	}
	for _, rc := range relCmds {
		rc := rc
		sh.Define(rc.name, rc.name+" <id> <target>", func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: %s <id> <target>", rc.name)
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			target, err := parseID(args[1])
			if err != nil {
				return err
			}
			if rc.add {
				return st.AddRelation(ctx, store.ObjID(id), rc.rel, store.ObjID(target))
			}
			return st.DelRelation(ctx, store.ObjID(id), rc.rel, store.ObjID(target))
		})
	}

	sh.Define("watch", "watch <pattern> [cel-predicate...]", func(ctx context.Context, args []string) error {
		if len(args) < 1 {
			return errors.New("usage: watch <pattern> [cel-predicate...]")
		}
		filter, err := script.NewFilter(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		printer := store.HandlerFunc(func(_ context.Context, l *store.Log) error {
			return printJSON(out, l)
		})
		tok, err := st.Register(args[0], filter.Guard(printer))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "watch %s\n", tok)
		return nil
	})

	sh.Define("on", "on <pattern> <expr...>", func(ctx context.Context, args []string) error {
		if len(args) < 2 {
			return errors.New("usage: on <pattern> <expr...>")
		}
		h, err := script.NewExprHandler(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		tok, err := st.Register(args[0], h)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "handler %s\n", tok)
		return nil
	})

	sh.Define("unwatch", "unwatch <token>", func(ctx context.Context, args []string) error {
		if len(args) != 1 {
			return errors.New("usage: unwatch <token>")
		}
		tok, err := uuid.Parse(args[0])
		if err != nil {
			return err
		}
		if !st.Unregister(tok) {
			return fmt.Errorf("no handler registered under %s", args[0])
		}
		return nil
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

func parseAttrs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("attribute %q is not key=value", p)
		}
		attrs[k] = v
	}
	return attrs, nil
}

func printJSON(out io.Writer, v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(buf))
	return err
}
