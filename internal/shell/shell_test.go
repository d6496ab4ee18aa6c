package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefineAndEval(t *testing.T) {
	var out, errOut bytes.Buffer
	sh := New(Options{In: strings.NewReader(""), Out: &out, ErrOut: &errOut})

	var got []string
	sh.Define("hello", "say hello", func(_ context.Context, args []string) error {
		got = append([]string{}, args...)
		return nil
	})

	sh.Eval(context.Background(), "hello world again")
	if len(got) != 2 || got[0] != "world" || got[1] != "again" {
		t.Fatalf("args = %v", got)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected error output: %s", errOut.String())
	}
}

func TestEvalReportsErrorsAndContinues(t *testing.T) {
	input := "boom\nhello\n"
	var out, errOut bytes.Buffer
	sh := New(Options{In: strings.NewReader(input), Out: &out, ErrOut: &errOut})

	ran := false
	sh.Define("boom", "fail", func(context.Context, []string) error {
		return errors.New("kaboom")
	})
	sh.Define("hello", "ok", func(context.Context, []string) error {
		ran = true
		return nil
	})

	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(errOut.String(), "kaboom") {
		t.Fatalf("error not reported: %q", errOut.String())
	}
	if !ran {
		t.Fatalf("loop stopped after a failing command")
	}
}

func TestUnknownCommandDoesNotStopLoop(t *testing.T) {
	input := "nosuch\nhello\n"
	var out, errOut bytes.Buffer
	sh := New(Options{In: strings.NewReader(input), Out: &out, ErrOut: &errOut})

	ran := false
	sh.Define("hello", "ok", func(context.Context, []string) error {
		ran = true
		return nil
	})
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if errOut.Len() == 0 {
		t.Fatalf("unknown command produced no error")
	}
	if !ran {
		t.Fatalf("loop stopped after unknown command")
	}
}

func TestDefineReplacesCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	sh := New(Options{In: strings.NewReader(""), Out: &out, ErrOut: &errOut})

	version := 0
	sh.Define("v", "", func(context.Context, []string) error {
		version = 1
		return nil
	})
	sh.Define("v", "", func(context.Context, []string) error {
		version = 2
		return nil
	})

	sh.Eval(context.Background(), "v")
	if version != 2 {
		t.Fatalf("old definition still active: version = %d", version)
	}
	names := sh.Commands()
	if len(names) != 1 || names[0] != "v" {
		t.Fatalf("commands = %v", names)
	}
}

func TestHistoryWrittenOnExit(t *testing.T) {
	histPath := filepath.Join(t.TempDir(), "nested", "history")
	var out, errOut bytes.Buffer
	sh := New(Options{
		In:          strings.NewReader("hello\n\nhello again\n"),
		Out:         &out,
		ErrOut:      &errOut,
		HistoryPath: histPath,
	})
	sh.Define("hello", "", func(context.Context, []string) error { return nil })

	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(histPath)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	// Blank lines are not recorded.
	want := "hello\nhello again\n"
	if string(b) != want {
		t.Fatalf("history = %q, want %q", b, want)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errOut bytes.Buffer
	sh := New(Options{In: strings.NewReader("hello\n"), Out: &out, ErrOut: &errOut})
	called := false
	sh.Define("hello", "", func(context.Context, []string) error {
		called = true
		return nil
	})
	if err := sh.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if called {
		t.Fatalf("command ran after cancellation")
	}
}
