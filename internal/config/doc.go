// Package config loads sched configuration from a JSON or YAML file with a
// SCHED_* environment overlay, and resolves OS-specific default paths.
package config
