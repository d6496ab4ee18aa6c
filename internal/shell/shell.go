package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	logpkg "github.com/crides/sched/pkg/log"
)

// RunFunc is a shell command handler. args are the whitespace tokens after
// the command name.
type RunFunc func(ctx context.Context, args []string) error

// Options configures a Shell.
type Options struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	// Prompt printed before each line. Defaults to ">=> ".
	Prompt string
	// HistoryPath is the file non-empty input lines are appended to on
	// exit. Empty disables history.
	HistoryPath string
	Logger      logpkg.Logger
}

// Shell is a line-oriented command loop over a dynamically built cobra
// command tree. Commands are registered at runtime with Define; a command
// failure is reported and the loop continues.
type Shell struct {
	root        *cobra.Command
	cmds        map[string]*cobra.Command
	in          io.Reader
	out, errOut io.Writer
	prompt      string
	historyPath string
	logger      logpkg.Logger
	history     []string
}

// New builds an empty Shell.
func New(opts Options) *Shell {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Prompt == "" {
		opts.Prompt = ">=> "
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.Nop()
	}
	root := &cobra.Command{
		Use:           "cmd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(opts.Out)
	root.SetErr(opts.ErrOut)
	return &Shell{
		root:        root,
		cmds:        map[string]*cobra.Command{},
		in:          opts.In,
		out:         opts.Out,
		errOut:      opts.ErrOut,
		prompt:      opts.Prompt,
		historyPath: opts.HistoryPath,
		logger:      logger.WithComponent("shell"),
	}
}

// Define registers (or replaces) a sub-command at runtime.
func (sh *Shell) Define(name, short string, run RunFunc) {
	if old, ok := sh.cmds[name]; ok {
		sh.root.RemoveCommand(old)
	}
	cmd := &cobra.Command{
		Use:           name,
		Short:         short,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			return run(c.Context(), args)
		},
	}
	sh.cmds[name] = cmd
	sh.root.AddCommand(cmd)
}

// Commands returns the registered command names.
func (sh *Shell) Commands() []string {
	names := make([]string, 0, len(sh.cmds))
	for name := range sh.cmds {
		names = append(names, name)
	}
	return names
}

// Run reads whitespace-tokenized lines until EOF or context cancellation,
// routing each to its sub-command. History is written on the way out.
func (sh *Shell) Run(ctx context.Context) error {
	defer sh.saveHistory()
	scanner := bufio.NewScanner(sh.in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(sh.out, sh.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		sh.history = append(sh.history, line)
		sh.Eval(ctx, line)
	}
}

// Eval runs a single input line. A handler error is reported on the error
// stream; the caller's loop is never torn down by a failing command.
func (sh *Shell) Eval(ctx context.Context, line string) {
	args := strings.Fields(line)
	sh.root.SetArgs(args)
	if err := sh.root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(sh.errOut, "error: %v\n", err)
		sh.logger.Debug("command failed", logpkg.Str("line", line), logpkg.Err(err))
	}
}

func (sh *Shell) saveHistory() {
	if sh.historyPath == "" || len(sh.history) == 0 {
		return
	}
	if err := os.MkdirAll(filepath.Dir(sh.historyPath), 0o755); err != nil {
		sh.logger.Warn("history dir", logpkg.Err(err))
		return
	}
	f, err := os.OpenFile(sh.historyPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		sh.logger.Warn("history open", logpkg.Err(err))
		return
	}
	defer f.Close()
	for _, line := range sh.history {
		fmt.Fprintln(f, line)
	}
}
