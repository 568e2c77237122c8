package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// Watch reloads the file at path whenever it is written and passes every
// valid result to fn. Invalid files are logged and skipped. Watching stops
// when ctx is done.
func Watch(ctx context.Context, path string, log *slog.Logger, fn func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// editors replace files, so watch the directory
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer w.Close()
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != filepath.Base(path) || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDelay, func() {
					cfg, err := Load(path)
					if err != nil {
						log.Warn("config reload rejected", "path", path, "err", err)
						return
					}
					log.Info("config reloaded", "path", path)
					fn(cfg)
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher", "err", err)
			}
		}
	}()
	return nil
}
