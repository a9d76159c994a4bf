package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/tagnote/pkg/core"
)

type watchWorker struct {
	*worker.BaseWorker
	storage *Storage
	pattern string
	events  chan<- core.Event
	owned   bool // close events when run exits
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

func newWatchWorker(s *Storage, pattern string, events chan<- core.Event) *watchWorker {
	if pattern == "" {
		pattern = "*"
	}
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		storage:    s,
		pattern:    pattern,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	if !doublestar.ValidatePattern(w.pattern) {
		return fmt.Errorf("invalid watch pattern %q", w.pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(w.storage.Path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.storage.Path, err)
	}

	gitDir := filepath.Join(w.storage.Path, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		_ = watcher.Add(gitDir)
	}

	// Prime fingerprints so that the first change to an existing key is
	// reported as a modification and deletions of unread keys are seen.
	if _, err := w.storage.Reconcile(ctx); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to scan vault: %w", err)
	}

	w.watcher = watcher
	w.storage.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"pattern":           w.pattern,
		}
	})
}

// handleGitLockEvent processes .git/index.lock events (git operations pause/resume).
// Returns true if event was handled, false if should continue processing.
func (w *watchWorker) handleGitLockEvent(event fsnotify.Event, gitLocked bool) (handled bool, locked bool) {
	locked = gitLocked
	if filepath.Base(event.Name) != "index.lock" || filepath.Base(filepath.Dir(event.Name)) != ".git" {
		return false, locked
	}

	log := w.storage.log()
	switch {
	case event.Has(fsnotify.Create):
		locked = true
		log.Debug("git operations detected, pausing watcher")
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		locked = false
		log.Debug("git operations finished, reconciling")
	}
	return true, locked
}

// reconcileAfterGitUnlock picks up changes made while git held the index lock.
func (w *watchWorker) reconcileAfterGitUnlock(ctx context.Context) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		reconciled, err := w.storage.Reconcile(ctx)
		if err != nil {
			w.storage.log().Error("reconcile failed", "error", err)
			return err
		}
		for _, e := range reconciled {
			if w.matches(e.Key) {
				w.sendEvent(ctx, e)
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		w.storage.reportError(fmt.Errorf("reconcile: %w", err))
	}))
}

// processFilesystemEvent maps a raw fsnotify event onto a key change.
// Writes made through the storage itself produce no event because their
// fingerprint is already recorded.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	w.storage.log().Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}

	key, ok := w.storage.keyOf(event.Name)
	if !ok || !w.matches(key) {
		return false
	}

	e, changed := w.storage.observe(key)
	if !changed {
		return false
	}
	e.Timestamp = time.Now().Unix()
	w.sendEvent(ctx, e)
	return true
}

func (w *watchWorker) matches(key string) bool {
	ok, err := doublestar.Match(w.pattern, key)
	return err == nil && ok
}

func (w *watchWorker) sendEvent(ctx context.Context, event core.Event) {
	defer func() {
		// The channel may be closed while a reconcile goroutine is still delivering.
		_ = recover()
	}()
	select {
	case w.events <- event:
	case <-ctx.Done():
	}
}

// handleWatcherError processes errors from the fsnotify watcher.
func (w *watchWorker) handleWatcherError(err error) {
	w.storage.log().Error("fsnotify error", "error", err)
	if w.storage.config.ErrorHandler != nil {
		w.storage.config.ErrorHandler(err)
	}
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			log := w.storage.log()
			if log.Enabled(ctx, slog.LevelDebug) {
				log.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				log.Error("watcher panic", "error", err)
			}
		}
	}()
	defer func() {
		if w.owned {
			close(w.events)
		}
	}()
	defer w.storage.setWatcherActive(false)
	defer w.watcher.Close()

	gitLocked := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}

			var handled bool
			wasLocked := gitLocked
			if handled, gitLocked = w.handleGitLockEvent(event, gitLocked); handled {
				if wasLocked && !gitLocked {
					w.reconcileAfterGitUnlock(ctx)
				}
				continue
			}
			if gitLocked {
				continue
			}

			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}
