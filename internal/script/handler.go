package script

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/crides/sched/internal/store"
)

// ExprHandler runs a compiled expr-lang program for each dispatched Log.
// The program's return value is discarded; a runtime error is the handler's
// failure.
type ExprHandler struct {
	src  string
	prog *vm.Program
}

// NewExprHandler compiles src into a handler body. The program sees the Log
// as `log` (a map with id, type, time, time_ms and attrs).
func NewExprHandler(src string) (*ExprHandler, error) {
	prog, err := expr.Compile(src, expr.Env(exprEnv{}))
	if err != nil {
		return nil, err
	}
	return &ExprHandler{src: src, prog: prog}, nil
}

// Source returns the program source the handler was built from.
func (h *ExprHandler) Source() string { return h.src }

// HandleLog implements store.Handler.
func (h *ExprHandler) HandleLog(ctx context.Context, l *store.Log) error {
	_, err := expr.Run(h.prog, exprEnv{Log: logEnv(l)})
	return err
}

type exprEnv struct {
	Log map[string]any `expr:"log"`
}

// logEnv is the script-facing view of a Log, shared by Filter and
// ExprHandler.
func logEnv(l *store.Log) map[string]any {
	if l == nil {
		return map[string]any{}
	}
	attrs := map[string]string{}
	for k, v := range l.Attrs {
		attrs[k] = v
	}
	return map[string]any{
		"id":      int64(l.ID),
		"type":    l.Type,
		"time":    l.Time,
		"time_ms": l.Time.UnixMilli(),
		"attrs":   attrs,
	}
}
