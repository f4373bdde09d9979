package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-runs an action whenever a configuration file changes. Bursts of
// events (editors often write, chmod and rename in quick succession) are
// collapsed into one call after the debounce window.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(ctx context.Context) error
}

type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before the action runs. Default 300ms.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

func WithLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) { w.logger = l }
}

func NewWatcher(path string, onChange func(ctx context.Context) error, opts ...WatchOption) *Watcher {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w := &Watcher{
		path:     filepath.Clean(abs),
		debounce: 300 * time.Millisecond,
		logger:   slog.Default(),
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is cancelled. The parent directory is watched rather
// than the file so atomic rename-over saves and re-creation are seen. Action
// errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.InfoContext(ctx, "watching config file", "path", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "config watcher error", "path", w.path, "error", err)

		case <-timer.C:
			if err := w.onChange(ctx); err != nil {
				w.logger.ErrorContext(ctx, "config reload failed", "path", w.path, "error", err)
				continue
			}
			w.logger.InfoContext(ctx, "config reloaded", "path", w.path)
		}
	}
}
