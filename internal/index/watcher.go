package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/sunc/internal/checksum"
	"github.com/starford/sunc/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven store change.
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// watcher carries the state shared by the handlers of one Watch call.
type watcher struct {
	db     *DB
	store  storage.Provider
	ev     Evaluator
	root   string
	logger *slog.Logger
	cb     EventCallback
}

func (w *watcher) emit(kind, path string) {
	if w.cb != nil {
		w.cb(kind, path)
	}
}

// Watch re-evaluates worksheets under root as they change, until ctx is
// cancelled. cb (if non-nil) is called after each successful store change.
//
// Directories created at runtime are added to the watch list. Renames
// delete the old entry and schedule a debounced reconciliation against the
// file system.
func Watch(ctx context.Context, db *DB, store storage.Provider, ev Evaluator, root string, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}

	w := &watcher{db: db, store: store, ev: ev, root: root, logger: logger, cb: cb}
	logger.Info("watcher: started", slog.String("root", root))

	var (
		reconcileTimer *time.Timer
		reconcileCh    <-chan time.Time
	)
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
			w.reconcile(ctx)

		case e, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if e.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(e.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, e.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", e.Name),
							slog.String("error", addErr.Error()))
					}
					w.indexDir(ctx, e.Name)
					continue
				}
			}
			if !storage.IsWorksheet(e.Name) {
				continue
			}
			rel, relErr := filepath.Rel(root, e.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := EventUpdated
				if e.Op&fsnotify.Create != 0 {
					kind = EventCreated
				}
				w.index(ctx, rel, kind)

			case e.Op&fsnotify.Remove != 0:
				w.remove(rel)

			case e.Op&fsnotify.Rename != 0:
				// Rename arrives for the old name only; the new name shows up
				// as a Create if it stays inside a watched directory.
				w.remove(rel)
				scheduleReconcile()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// index re-evaluates rel unless its content is unchanged.
func (w *watcher) index(ctx context.Context, rel, kind string) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	// Writes through the service are already stored; only announce them.
	if cs, _ := w.db.GetChecksum(rel); cs == "" || cs != checksum.Sum(data) {
		if err := IndexFile(ctx, w.db, w.ev, rel, data); err != nil {
			// The failure is stored with the worksheet; subscribers still
			// learn that it changed.
			w.logger.Warn("watcher: evaluation failed", slog.String("path", rel), slog.String("error", err.Error()))
		}
		w.logger.Debug("watcher: evaluated", slog.String("path", rel), slog.String("op", kind))
	}
	w.emit(kind, rel)
}

func (w *watcher) remove(rel string) {
	if err := w.db.DeleteWorksheet(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.emit(EventDeleted, rel)
}

// reconcile drops stored worksheets missing on disk and evaluates on-disk
// worksheets whose checksum is unknown.
func (w *watcher) reconcile(ctx context.Context) {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.remove(p)
		}
	}
	for p, cs := range disk {
		if old, ok := checksums[p]; ok && old == cs {
			continue
		}
		kind := EventUpdated
		if _, ok := checksums[p]; !ok {
			kind = EventCreated
		}
		w.index(ctx, p, kind)
	}
}

// indexDir evaluates worksheets already present in a new directory.
func (w *watcher) indexDir(ctx context.Context, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsWorksheet(path) {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		w.index(ctx, filepath.ToSlash(rel), EventCreated)
		return nil
	})
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
