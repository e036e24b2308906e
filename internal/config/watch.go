package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle collapses the burst of events an editor save produces into one reload.
const settle = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes each valid result to fn.
// Invalid files are logged and skipped so a half-written edit never reaches
// a running vessel. Watch blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file, since many editors
// save by renaming a temporary file over the original.
func Watch(ctx context.Context, path string, log *slog.Logger, fn func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", "err", err)
		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				log.Warn("config reload rejected", "path", abs, "err", err)
				continue
			}
			log.Info("config reloaded", "path", abs)
			fn(cfg)
		}
	}
}
