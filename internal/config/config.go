package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// DataDir holds the store and history. Defaults per-OS.
	DataDir string `json:"dataDir" yaml:"dataDir"`
	// HistoryPath is the shell history file. Defaults to <DataDir>/history.
	HistoryPath string `json:"historyPath" yaml:"historyPath"`
	// InitFile is an optional script of shell lines run before the prompt.
	InitFile string `json:"initFile" yaml:"initFile"`
	// LogLevel is debug|info|warn|error.
	LogLevel string `json:"logLevel" yaml:"logLevel"`
	// LogFormat is text|json.
	LogFormat string `json:"logFormat" yaml:"logFormat"`
	// Fsync is always|interval|never.
	Fsync string `json:"fsync" yaml:"fsync"`
	// FsyncIntervalMs tunes group commit when Fsync=interval.
	FsyncIntervalMs int `json:"fsyncIntervalMs" yaml:"fsyncIntervalMs"`
}

// Default returns built-in defaults.
func Default() Config {
	dataDir := DefaultDataDir()
	return Config{
		DataDir:         dataDir,
		HistoryPath:     filepath.Join(dataDir, "history"),
		LogLevel:        "info",
		LogFormat:       "text",
		Fsync:           "interval",
		FsyncIntervalMs: 5,
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path
// is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = filepath.Join(cfg.DataDir, "history")
	}
	return cfg, nil
}
