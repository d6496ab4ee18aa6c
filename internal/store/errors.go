package store

import (
	"errors"
	"fmt"
)

// ErrRecursiveDispatch reports a handler-triggered mutation chain deeper than
// MaxDispatchDepth.
var ErrRecursiveDispatch = errors.New("store: dispatch recursion limit exceeded")

// InvalidKeyError reports an attribute key containing the reserved '.'
// separator.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("store: invalid attribute key %q", e.Key)
}

// InvalidLogIDError reports a lookup of a Log that does not exist.
type InvalidLogIDError struct {
	ID LogID
}

func (e *InvalidLogIDError) Error() string {
	return fmt.Sprintf("store: invalid log ID %d", e.ID)
}

// InvalidObjIDError reports a lookup of an Object that does not exist.
type InvalidObjIDError struct {
	ID ObjID
}

func (e *InvalidObjIDError) Error() string {
	return fmt.Sprintf("store: invalid object ID %d", e.ID)
}

// PatternError reports a handler pattern that failed to compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("store: invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// StoreUnavailableError reports that the persistence layer could not be
// reached. It is fatal to the enclosing operation but never to the process.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store: unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// CorruptRecordError reports a persisted document that failed to decode.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("store: corrupt record at %s: %v", e.Key, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }
