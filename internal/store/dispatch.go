package store

import (
	"context"
	"regexp"
	"sync"

	"github.com/google/uuid"

	logpkg "github.com/crides/sched/pkg/log"
)

// MaxDispatchDepth bounds how deep handler-triggered mutation chains may
// nest. A Log-creating operation entered at this depth fails with
// ErrRecursiveDispatch.
const MaxDispatchDepth = 8

type depthKey struct{}

// DispatchDepth returns how many nested dispatches deep ctx is. Zero outside
// any handler.
func DispatchDepth(ctx context.Context) int {
	if ctx == nil {
		return 0
	}
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

func withDispatchDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}

func checkDepth(ctx context.Context) error {
	if DispatchDepth(ctx) >= MaxDispatchDepth {
		return ErrRecursiveDispatch
	}
	return nil
}

// Handler is the callable capability invoked with each matching Log.
// Handlers run synchronously on the goroutine that created the Log, after
// the mutation has committed and the facade lock has been released. A
// handler that calls back into the store must pass along the context it was
// given; the nested-dispatch depth limit rides on it.
type Handler interface {
	HandleLog(ctx context.Context, log *Log) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, log *Log) error

func (f HandlerFunc) HandleLog(ctx context.Context, log *Log) error { return f(ctx, log) }

type registration struct {
	token   uuid.UUID
	pattern string
	re      *regexp.Regexp
	handler Handler
}

// Dispatcher routes newly created Logs to handlers whose pattern matches the
// Log type. Registration order is preserved, per pattern and across
// patterns; multiple handlers may share a pattern and all fire.
type Dispatcher struct {
	mu     sync.Mutex
	regs   []registration
	logger logpkg.Logger
}

// NewDispatcher creates a Dispatcher logging handler failures to logger.
func NewDispatcher(logger logpkg.Logger) *Dispatcher {
	if logger == nil {
		logger = logpkg.Nop()
	}
	return &Dispatcher{logger: logger.WithComponent("dispatch")}
}

// Register compiles pattern as a regular expression over Log type strings
// and appends the handler. Existing registrations for the same pattern are
// kept. Returns a token usable with Unregister.
func (d *Dispatcher) Register(pattern string, h Handler) (uuid.UUID, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return uuid.Nil, &PatternError{Pattern: pattern, Err: err}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	tok := uuid.New()
	d.regs = append(d.regs, registration{token: tok, pattern: pattern, re: re, handler: h})
	return tok, nil
}

// Unregister removes the registration identified by token. Reports whether
// anything was removed.
func (d *Dispatcher) Unregister(token uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, r := range d.regs {
		if r.token == token {
			d.regs = append(d.regs[:i], d.regs[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch invokes every handler whose pattern matches log.Type, in
// registration order. A handler error is logged and the remaining handlers
// still run; the mutation that produced log has already committed.
func (d *Dispatcher) Dispatch(ctx context.Context, log *Log) {
	if log == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.Lock()
	regs := make([]registration, len(d.regs))
	copy(regs, d.regs)
	d.mu.Unlock()

	hctx := withDispatchDepth(ctx, DispatchDepth(ctx)+1)
	for _, r := range regs {
		if !r.re.MatchString(log.Type) {
			continue
		}
		if err := r.handler.HandleLog(hctx, log); err != nil {
			d.logger.Error("handler failed",
				logpkg.Str("pattern", r.pattern),
				logpkg.Str("log_type", log.Type),
				logpkg.Int64("log_id", int64(log.ID)),
				logpkg.Err(err))
		}
	}
}
