// Package log provides structured logging for sched components.
//
// Loggers are constructed once and passed explicitly; there is no package
// global. The implementation is a thin layer over log/slog so handlers,
// formats and level gating come from the standard runtime, while callers get
// a small Field-based API:
//
//	logger := log.NewLogger(log.WithLevel(log.DebugLevel), log.WithFormat(log.TextFormat))
//	logger = logger.WithComponent("store")
//	logger.Info("object created", log.Int64("id", 42))
package log
