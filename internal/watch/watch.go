// Package watch reports saved revisions of a single local file.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must stay quiet before a change is
// reported. Editors often save with several writes in a row.
const DefaultDebounce = 300 * time.Millisecond

// Options configures Watch.
type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watch calls onChange with the content of path each time the file is
// written or re-created, until ctx is cancelled. Unchanged content is not
// reported twice. Errors from onChange are logged and watching continues.
//
// The parent directory is watched rather than the file, so editors that save
// by writing a temporary file and renaming it over path are seen too.
func Watch(ctx context.Context, path string, opts Options, onChange func(content string) error) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(target)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	logger.Info("watcher: started", slog.String("path", target))

	// The current content counts as already seen.
	var last string
	if data, err := os.ReadFile(target); err == nil {
		last = string(data)
	}

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			data, err := os.ReadFile(target)
			if err != nil {
				logger.Warn("watcher: read failed", slog.String("path", target), slog.String("error", err.Error()))
				continue
			}
			content := string(data)
			if content == last {
				logger.Debug("watcher: content unchanged", slog.String("path", target))
				continue
			}
			if err := onChange(content); err != nil {
				logger.Warn("watcher: change handler failed", slog.String("path", target), slog.String("error", err.Error()))
				continue
			}
			last = content

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				logger.Debug("watcher: file changed", slog.String("path", target), slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
