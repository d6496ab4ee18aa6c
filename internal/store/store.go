package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	pebblestore "github.com/crides/sched/internal/storage/pebble"
	logpkg "github.com/crides/sched/pkg/log"
)

// Options for opening a Store.
type Options struct {
	// DataDir is the Pebble database directory.
	DataDir string
	// Fsync selects the WAL sync policy.
	Fsync pebblestore.FsyncMode
	// FsyncInterval tunes group commit for FsyncModeInterval.
	FsyncInterval time.Duration
	// Logger receives store and handler-failure logs. Defaults to a no-op.
	Logger logpkg.Logger
	// Now overrides the clock. Tests only.
	Now func() time.Time
}

// Store is the single entry point to the engine. One mutex serializes every
// operation; event dispatch runs after the lock is released.
type Store struct {
	mu         sync.Mutex
	db         *pebblestore.DB
	dispatcher *Dispatcher
	logger     logpkg.Logger
	now        func() time.Time
}

// Open opens (or creates) the backing database and returns a ready Store.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.Nop()
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, &StoreUnavailableError{Op: "open", Err: err}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		db:         db,
		dispatcher: NewDispatcher(logger),
		logger:     logger.WithComponent("store"),
		now:        now,
	}, nil
}

// Close closes the backing database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register adds a handler for Logs whose type matches pattern. See
// Dispatcher.Register.
func (s *Store) Register(pattern string, h Handler) (uuid.UUID, error) {
	return s.dispatcher.Register(pattern, h)
}

// Unregister removes a handler registration by token.
func (s *Store) Unregister(token uuid.UUID) bool {
	return s.dispatcher.Unregister(token)
}
