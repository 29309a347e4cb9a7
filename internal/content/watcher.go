package content

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// Watch rebuilds the library whenever files under dir change. Events are
// debounced so a burst of writes triggers a single rebuild. Blocks until
// ctx is cancelled.
func (l *Library) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// fsnotify is not recursive; add every subdirectory.
	addTree := func(root string) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if werr := watcher.Add(path); werr != nil {
					l.logger.Warn("failed to watch directory",
						slog.String("path", path),
						slog.String("error", werr.Error()),
					)
				}
			}
			return nil
		})
	}
	addTree(dir)

	var rebuildTimer *time.Timer
	defer func() {
		if rebuildTimer != nil {
			rebuildTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					addTree(event.Name)
				}
			}

			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			rebuildTimer = time.AfterFunc(watchDebounce, func() {
				l.logger.Info("content changed, rebuilding index",
					slog.String("trigger", event.Name),
				)
				if err := l.Rebuild(ctx); err != nil {
					l.logger.Error("content rebuild failed",
						slog.String("error", err.Error()),
					)
				}
			})

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("content watcher error", slog.String("error", werr.Error()))
		}
	}
}
