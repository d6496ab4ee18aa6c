package config

import (
	"os"
	"strconv"
)

// FromEnv overlays SCHED_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SCHED_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SCHED_HISTORY_PATH"); v != "" {
		cfg.HistoryPath = v
	}
	if v := os.Getenv("SCHED_INIT_FILE"); v != "" {
		cfg.InitFile = v
	}
	if v := os.Getenv("SCHED_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SCHED_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("SCHED_FSYNC"); v != "" {
		cfg.Fsync = v
	}
	if v := os.Getenv("SCHED_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncIntervalMs = n
		}
	}
}
