package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.Fsync != "interval" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.HistoryPath != filepath.Join(cfg.DataDir, "history") {
		t.Fatalf("history path not derived from data dir: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"dataDir": "/tmp/sched-test", "logLevel": "debug", "fsync": "always"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/sched-test" || cfg.LogLevel != "debug" || cfg.Fsync != "always" {
		t.Fatalf("cfg = %+v", cfg)
	}
	// Unset fields keep defaults.
	if cfg.LogFormat != "text" {
		t.Fatalf("log format default lost: %+v", cfg)
	}
	if cfg.HistoryPath != filepath.Join("/tmp/sched-test", "history") {
		t.Fatalf("history path = %q", cfg.HistoryPath)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "dataDir: /tmp/sched-yaml\nfsyncIntervalMs: 20\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/sched-yaml" || cfg.FsyncIntervalMs != 20 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("want error for missing file")
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("want parse error")
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("SCHED_DATA_DIR", "/tmp/sched-env")
	t.Setenv("SCHED_LOG_LEVEL", "error")
	t.Setenv("SCHED_FSYNC_INTERVAL_MS", "42")

	cfg := Default()
	FromEnv(&cfg)
	if cfg.DataDir != "/tmp/sched-env" || cfg.LogLevel != "error" || cfg.FsyncIntervalMs != 42 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestFromEnvIgnoresBadInterval(t *testing.T) {
	t.Setenv("SCHED_FSYNC_INTERVAL_MS", "soon")
	cfg := Default()
	want := cfg.FsyncIntervalMs
	FromEnv(&cfg)
	if cfg.FsyncIntervalMs != want {
		t.Fatalf("interval = %d, want %d", cfg.FsyncIntervalMs, want)
	}
}

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	if got := DefaultDataDir(); got != filepath.Join("/tmp/xdg", "sched") {
		t.Fatalf("data dir = %q", got)
	}
}
