// Command biascheck labels the sentences of a TSV/CSV/XLSX table for gender
// bias by asking a language model one question per sentence.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/untoldecay/biascheck/internal/llm"
	"github.com/untoldecay/biascheck/internal/ui"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultDeps())
	stop()
	os.Exit(code)
}

// deps are the collaborators a command reaches outside the process for.
// Tests replace them with fakes.
type deps struct {
	newClient func(llm.Config) (llm.Client, error)
	confirm   func(calls int, model string) (bool, error)
}

func defaultDeps() deps {
	return deps{newClient: llm.New, confirm: ui.ConfirmRun}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, d deps) int {
	root := newRootCmd(stdout, stderr, d)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
