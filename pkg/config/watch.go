package config

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/colonnadedb/colonnade/internal/logger"
)

// Watch monitors the configuration file at path and invokes onChange with
// the freshly loaded configuration each time the file is rewritten.
//
// Only a subset of configuration can change at runtime (currently the
// logging level); callers decide what to apply. Changes that fail to load
// or validate are logged and skipped, keeping the last good configuration
// in effect.
//
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	logger.Debug("watching configuration file for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Write == fsnotify.Write {
				reload(path, onChange)
			}

			// Editors commonly save by writing a temp file and renaming it
			// over the original, which drops the watch on the old inode.
			// Re-arm on the new file before reloading.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if err := rearmWatch(watcher, path); err != nil {
					logger.Warn("lost watch on configuration file", "path", path, "error", err)
					continue
				}
				reload(path, onChange)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("configuration watcher error", "error", err)
		}
	}
}

// reload loads and validates the configuration file, invoking onChange only
// on success.
func reload(path string, onChange func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		logger.Warn("ignoring configuration change, reload failed", "path", path, "error", err)
		return
	}

	logger.Info("configuration file changed, applying runtime settings", "path", path)
	onChange(cfg)
}

// rearmWatch re-adds the path after a rename or removal, retrying briefly
// to let the editor finish the replace.
func rearmWatch(watcher *fsnotify.Watcher, path string) error {
	var err error
	for i := 0; i < 10; i++ {
		if err = watcher.Add(path); err == nil {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return err
}
