// Package watcher keeps loaded GEDCOM sources in step with the sources
// directory using fsnotify.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/shajara/internal/storage"
)

// Debounce is how long the watcher waits for a burst of events on the same
// files to settle before acting on them.
const Debounce = 200 * time.Millisecond

// Reloader is the part of the tree service the watcher drives.
type Reloader interface {
	Reload(ctx context.Context, path string) error
	Remove(ctx context.Context, path string) error
	Reconcile(ctx context.Context) error
}

// EventCallback is called after a watcher-driven change.
// kind is one of "updated", "deleted", "reconciled".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the sources root and processes file
// change events until ctx is cancelled.
//
// Writes are coalesced per file and applied once the file has been quiet
// for Debounce. New directories are added to the watch list. Renames remove
// the old path and schedule a reconciliation pass that picks up the new one.
func Watch(ctx context.Context, r Reloader, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]struct{})
	var flushTimer, reconcileTimer *time.Timer
	var flushCh, reconcileCh <-chan time.Time

	schedule := func(t **time.Timer, ch *<-chan time.Time) {
		if *t == nil {
			*t = time.NewTimer(Debounce)
			*ch = (*t).C
			return
		}
		(*t).Reset(Debounce)
	}

	notify := func(kind, path string) {
		if cb != nil {
			cb(kind, path)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for _, t := range []*time.Timer{flushTimer, reconcileTimer} {
				if t != nil {
					t.Stop()
				}
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			for _, p := range paths {
				if err := r.Reload(ctx, p); err != nil {
					logger.Warn("watcher: reload failed", slog.String("path", p), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: reloaded", slog.String("path", p))
				notify("updated", p)
			}

		case <-reconcileCh:
			if err := r.Reconcile(ctx); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
				continue
			}
			notify("reconciled", "")

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					// Files moved in together with the directory produce no
					// events of their own.
					schedule(&reconcileTimer, &reconcileCh)
					continue
				}
			}

			if !storage.IsSource(ev.Name) {
				continue
			}
			rel, relErr := store.Rel(ev.Name)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[rel] = struct{}{}
				schedule(&flushTimer, &flushCh)

			case ev.Op&fsnotify.Remove != 0:
				delete(pending, rel)
				if err := r.Remove(ctx, rel); err != nil {
					logger.Warn("watcher: remove failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				logger.Debug("watcher: removed", slog.String("path", rel))
				notify("deleted", rel)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old path only; the new path
				// arrives as a Create when it stays under a watched dir.
				delete(pending, rel)
				if err := r.Remove(ctx, rel); err != nil {
					logger.Warn("watcher: rename remove failed", slog.String("path", rel), slog.String("error", err.Error()))
				} else {
					notify("deleted", rel)
				}
				schedule(&reconcileTimer, &reconcileCh)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
