package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/vetbridge/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven catalog change with the
// affected resource id.
type EventCallback func(kind, id string)

const reconcileDelay = 200 * time.Millisecond

// Watch follows the resource directory with fsnotify and applies changes
// until ctx is cancelled. Directories created at runtime are added to the
// watch list. Renames schedule a debounced reconcile pass, since fsnotify
// only reports the old name.
func Watch(ctx context.Context, db Store, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, id string) {
		if cb != nil && id != "" {
			cb(kind, id)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(abs); statErr == nil && info.IsDir() {
					if err := addDirsRecursive(w, abs); err != nil {
						logger.Warn("watcher: add new dir failed", slog.String("path", abs), slog.String("error", err.Error()))
					}
					// Files copied in with the directory raise no events of their own.
					scheduleReconcile()
					continue
				}
			}

			if !strings.HasSuffix(abs, storage.DocExt) || strings.HasPrefix(filepath.Base(abs), ".") {
				continue
			}
			rel, relErr := filepath.Rel(root, abs)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				id, err := indexPath(db, store, rel)
				if err != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				kind := EventUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = EventCreated
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, id)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				id, err := db.DeleteByPath(rel)
				if err != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
				} else {
					logger.Debug("watcher: deleted", slog.String("path", rel))
					notify(EventDeleted, id)
				}
				if ev.Op&fsnotify.Rename != 0 {
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// indexPath indexes a single document whose metadata is not yet known.
func indexPath(db Store, store storage.Provider, rel string) (string, error) {
	var mtime time.Time
	if fsStore, ok := store.(*storage.FS); ok {
		if info, err := os.Stat(filepath.Join(fsStore.Root(), filepath.FromSlash(rel))); err == nil {
			mtime = info.ModTime()
		}
	}
	return indexFile(db, store, storage.Meta{Path: rel, UpdatedAt: mtime})
}

// reconcile removes catalog rows without a document on disk and indexes
// documents whose checksum changed.
func reconcile(db Store, store storage.Provider, logger *slog.Logger, notify EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]storage.Meta, len(metas))
	for _, m := range metas {
		disk[m.Path] = m
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if id, err := db.DeleteByPath(p); err == nil {
			logger.Debug("reconcile: removed stale", slog.String("path", p))
			notify(EventDeleted, id)
		}
	}
	for p, m := range disk {
		old, known := checksums[p]
		if old == m.Checksum {
			continue
		}
		id, err := indexFile(db, store, m)
		if err != nil {
			continue
		}
		logger.Debug("reconcile: indexed", slog.String("path", p))
		if known {
			notify(EventUpdated, id)
		} else {
			notify(EventCreated, id)
		}
	}
}

// addDirsRecursive adds root and all non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
