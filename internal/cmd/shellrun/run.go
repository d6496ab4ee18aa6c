package shellrun

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	cfgpkg "github.com/crides/sched/internal/config"
	"github.com/crides/sched/internal/shell"
	pebblestore "github.com/crides/sched/internal/storage/pebble"
	"github.com/crides/sched/internal/store"
	logpkg "github.com/crides/sched/pkg/log"
)

// Options for running the interactive shell.
type Options struct {
	// ConfigPath points at a config file; empty means discover, then
	// defaults.
	ConfigPath string
	// DataDir overrides the configured data directory.
	DataDir string
	// InitFile overrides the configured init script.
	InitFile string
	// LogLevel / LogFormat override the configured logging setup.
	LogLevel  string
	LogFormat string
	// Fsync overrides the configured fsync mode (always|interval|never).
	Fsync string
}

// Run opens the store, registers the builtin commands and blocks in the
// shell loop until EOF or a termination signal.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := opts.ConfigPath
	if path == "" {
		path = cfgpkg.DefaultConfigPath()
	}
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return err
	}
	cfgpkg.FromEnv(&cfg)
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
		cfg.HistoryPath = filepath.Join(cfg.DataDir, "history")
	}
	if opts.InitFile != "" {
		cfg.InitFile = opts.InitFile
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.Fsync != "" {
		cfg.Fsync = opts.Fsync
	}

	level, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logpkg.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	logger := logpkg.NewLogger(logpkg.WithLevel(level), logpkg.WithFormat(format))

	mode, err := pebblestore.ParseFsyncMode(cfg.Fsync)
	if err != nil {
		return err
	}
	st, err := store.Open(store.Options{
		DataDir:       filepath.Join(cfg.DataDir, "store"),
		Fsync:         mode,
		FsyncInterval: time.Duration(cfg.FsyncIntervalMs) * time.Millisecond,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	sh := shell.New(shell.Options{
		In:          os.Stdin,
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		HistoryPath: cfg.HistoryPath,
		Logger:      logger,
	})
	RegisterBuiltins(sh, st, os.Stdout)

	if cfg.InitFile != "" {
		if err := runInitFile(sctx, sh, cfg.InitFile); err != nil {
			return err
		}
	}

	logger.Info("sched ready",
		logpkg.Str("data_dir", cfg.DataDir),
		logpkg.Str("fsync", cfg.Fsync),
		logpkg.Str("level", cfg.LogLevel))
	return sh.Run(sctx)
}

// runInitFile feeds the init script through the shell line by line. Line
// failures are reported by the shell and do not stop the script; only a
// missing or unreadable file is fatal.
func runInitFile(ctx context.Context, sh *shell.Shell, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sh.Eval(ctx, line)
	}
	return scanner.Err()
}
