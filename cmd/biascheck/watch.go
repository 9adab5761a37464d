package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/untoldecay/biascheck/internal/config"
	"github.com/untoldecay/biascheck/internal/table"
)

const watchDebounce = 500 * time.Millisecond

// watchClassify runs once, then again after every change to the input file
// until ctx is canceled. Runs never overlap: changes that arrive during a run
// are folded into the next one.
func (a *app) watchClassify(ctx context.Context, opts *classifyOptions) error {
	input, err := filepath.Abs(config.GetString("input"))
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(input), err)
	}

	// Only the first run asks for confirmation.
	runOpts := *opts
	for {
		if _, err := a.runClassify(ctx, &runOpts); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !recoverable(err) {
				return err
			}
			a.logger.Warn("classification run failed, waiting for the next change", "error", err)
		}
		runOpts.yes = true

		a.logger.Info("watching for changes", "input", input)
		if err := waitForChange(ctx, watcher, input, watchDebounce); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// recoverable reports errors a later edit of the input can fix.
func recoverable(err error) bool {
	return errors.Is(err, table.ErrInputFormat) ||
		errors.Is(err, table.ErrOutputWrite) ||
		errors.Is(err, fs.ErrNotExist)
}

// waitForChange blocks until path has been written, created or renamed into
// place and then stayed quiet for debounce.
func waitForChange(ctx context.Context, w *fsnotify.Watcher, path string, debounce time.Duration) error {
	var timer <-chan time.Time
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer = time.After(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			return fmt.Errorf("file watcher: %w", err)
		case <-timer:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
