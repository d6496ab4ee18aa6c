// Package script provides handler capabilities authored as source strings.
//
// The dispatch core only knows store.Handler. This package supplies two
// concrete variants so front ends never bake a runtime into the engine:
//
//   - Filter: a compiled CEL predicate over a Log, used to guard any handler
//     so it fires only when the predicate holds.
//   - ExprHandler: a handler whose body is an expr-lang program evaluated
//     with the Log bound as `log`.
//
// Both see the same view of a Log: a map with id, type, time, time_ms and
// attrs.
package script
