package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events a single save produces
// (truncate, write, chmod, or rename into place) into one reload.
var reloadDelay = 250 * time.Millisecond

// Watch reloads the config at path whenever it changes on disk and passes
// the result to apply. Invalid files are logged and ignored. Watch blocks
// until ctx is done.
//
// The parent directory is watched rather than the file so editors that
// replace the file by rename keep triggering reloads.
func Watch(ctx context.Context, path string, apply func(*Config)) error {
	path = filepath.Clean(path)
	dir, name := filepath.Dir(path), filepath.Base(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}
	slog.Info("watching config", "path", path, "delay", reloadDelay)

	pending := time.NewTimer(reloadDelay)
	pending.Stop()
	defer pending.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			pending.Reset(reloadDelay)

		case <-pending.C:
			next, err := Load(path)
			if err != nil {
				slog.Error("config reload rejected, keeping current settings", "path", path, "err", err)
				continue
			}
			slog.Info("config reloaded",
				"path", path,
				"max_term_months", next.Limits.MaxTermMonths,
				"rate_limit_capacity", next.RateLimit.Capacity,
			)
			apply(next)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "path", path, "err", err)
		}
	}
}
