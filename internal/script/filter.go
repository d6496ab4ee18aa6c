package script

import (
	"context"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/crides/sched/internal/store"
)

// Filter wraps a compiled CEL predicate over a Log. The zero value (and any
// Filter built from an empty expression) is disabled and matches everything.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles expression into a Filter. An empty expression yields a
// disabled Filter whose Eval always returns true.
func NewFilter(expression string) (Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("log", cel.DynType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expression)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Eval evaluates the predicate against a Log. A disabled Filter returns
// true; an evaluation error returns false.
func (f Filter) Eval(l *store.Log) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{"log": logEnv(l)})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Guard wraps h so it only fires for Logs the filter matches.
func (f Filter) Guard(h store.Handler) store.Handler {
	return store.HandlerFunc(func(ctx context.Context, l *store.Log) error {
		if !f.Eval(l) {
			return nil
		}
		return h.HandleLog(ctx, l)
	})
}
