package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// watchPaths returns the absolute paths of the inputs. Every input must be
// a local file.
func watchPaths(inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, errors.New("--watch needs file inputs")
	}
	paths := make([]string, 0, len(inputs))
	for _, raw := range inputs {
		path, ok := localPath(raw)
		if !ok {
			return nil, fmt.Errorf("cannot watch %q", raw)
		}
		paths = append(paths, normalizePath(path))
	}
	return paths, nil
}

// watchInputs renders once, then again after each burst of changes to one
// of paths, until ctx is done. Render failures are logged and the watch
// goes on.
func watchInputs(ctx context.Context, paths []string, logger *slog.Logger, render func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Directories are watched so editors that replace files on save keep
	// triggering events.
	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		watched[path] = true
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	renderLogged := func() {
		if err := render(); err != nil {
			logger.Error("render failed", "err", err)
			return
		}
		logger.Info("rendered", "inputs", len(paths))
	}
	renderLogged()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("input changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			renderLogged()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
