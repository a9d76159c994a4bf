package fs

import (
	"log/slog"
	"time"

	"github.com/aretw0/introspection"
)

// StorageState exposes internal state for observability.
type StorageState struct {
	Path          string     `json:"path"`
	SystemDir     string     `json:"system_dir"`
	Ext           string     `json:"ext"`
	TrackedKeys   int        `json:"tracked_keys"`
	Gitless       bool       `json:"gitless"`
	ReadOnly      bool       `json:"read_only"`
	WatcherActive bool       `json:"watcher_active"`
	LastReconcile *time.Time `json:"last_reconcile,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StorageState{
		Path:          s.Path,
		SystemDir:     s.config.SystemDir,
		Ext:           s.config.Ext,
		TrackedKeys:   len(s.fingerprints),
		Gitless:       s.config.Gitless,
		ReadOnly:      s.config.ReadOnly,
		WatcherActive: s.watcherActive,
		LastReconcile: s.lastReconcile,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "fs-storage"
}

var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)

func (s *Storage) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}

func (s *Storage) recordReconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastReconcile = &now
}

func (s *Storage) log() *slog.Logger {
	if s.config.Logger != nil {
		return s.config.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (s *Storage) reportError(err error) {
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
		return
	}
	s.log().Error("watcher failure", "error", err)
}
