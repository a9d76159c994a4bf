package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/aretw0/tagnote/pkg/core"
	"github.com/aretw0/tagnote/pkg/git"
)

// DefaultSystemDir marks a directory as a tagnote vault.
const DefaultSystemDir = ".tagnote"

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path         string
	AutoInit     bool
	Gitless      bool
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	SystemDir    string      // e.g. ".tagnote"
	Ext          string      // File extension per key, e.g. ".json"
	ErrorHandler func(error) // Called for runtime watcher failures.
}

// Storage implements core.Storage as one file per key inside a vault directory.
// Each write replaces the file atomically and, unless gitless, is committed.
type Storage struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	fingerprints  map[string]uint64 // key -> xxhash of the last content seen or written
	watcherActive bool
	lastReconcile *time.Time
}

// NewStorage creates a new filesystem-backed storage.
func NewStorage(config Config) *Storage {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Ext == "" {
		config.Ext = ".json"
	}
	if !strings.HasPrefix(config.Ext, ".") {
		config.Ext = "." + config.Ext
	}
	return &Storage{
		Path:         config.Path,
		git:          git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		config:       config,
		fingerprints: make(map[string]uint64),
	}
}

// Initialize prepares the vault directory and, when versioned, the git repository.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.ReadOnly {
		return nil
	}

	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", s.Path)
		}
	} else {
		if err := os.MkdirAll(s.Path, 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Join(s.Path, s.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create system directory: %w", err)
	}

	if s.config.Gitless {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if !s.git.IsRepo() {
		if !s.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", s.Path)
		}
		if err := s.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := s.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	if mod && wasNewRepo {
		if err := s.git.Add(".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := s.git.Commit(git.FormatCommitMessage(git.CommitTypeChore, "", fmt.Sprintf("configure %s ignore", s.config.SystemDir), "")); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}
	return nil
}

func (s *Storage) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(s.Path, ".gitignore")
	entries := []string{s.config.SystemDir + "/", s.git.LockName()}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// filename maps a key to its file, rejecting keys that would escape the vault.
func (s *Storage) filename(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.Path, key+s.config.Ext), nil
}

// keyOf maps a vault path back to its key; ok is false for foreign files.
func (s *Storage) keyOf(path string) (string, bool) {
	if filepath.Dir(path) != filepath.Clean(s.Path) {
		return "", false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, TempFilePrefix) {
		return "", false
	}
	if filepath.Ext(base) != s.config.Ext {
		return "", false
	}
	return strings.TrimSuffix(base, s.config.Ext), true
}

// Get reads the document stored under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	name, err := s.filename(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	s.remember(key, data)
	return data, nil
}

// Set atomically replaces the file for key and commits it when versioned.
// A failed commit puts the previous document back, so disk never runs ahead
// of what callers were told was saved.
func (s *Storage) Set(ctx context.Context, key string, data []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	name, err := s.filename(key)
	if err != nil {
		return err
	}

	if !s.config.Gitless {
		unlock, err := s.git.Lock(ctx)
		if err != nil {
			return err
		}
		defer unlock()
	}

	rev, err := s.capture(key, name)
	if err != nil {
		return err
	}
	if rev.holds(data) {
		s.remember(key, data)
		return nil
	}
	if err := s.put(rev, data); err != nil {
		return err
	}
	if s.config.Gitless {
		return nil
	}

	rel := filepath.Base(name)
	if err := s.git.Add(rel); err != nil {
		return s.abandon(rev, fmt.Errorf("failed to stage %s: %w", rel, err))
	}
	msg := git.AppendFooter(core.ChangeReason(ctx, fmt.Sprintf("update %s", key)))
	if err := s.git.Commit(msg); err != nil {
		return s.abandon(rev, fmt.Errorf("failed to commit %s: %w", rel, err))
	}
	return nil
}

// Delete removes the file for key. A missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	name, err := s.filename(key)
	if err != nil {
		return err
	}

	if !s.config.Gitless {
		unlock, err := s.git.Lock(ctx)
		if err != nil {
			return err
		}
		defer unlock()
	}

	rev, err := s.capture(key, name)
	if err != nil {
		return err
	}
	s.forget(key)
	if !rev.existed {
		return nil
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		s.remember(key, rev.data)
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if s.config.Gitless {
		return nil
	}

	rel := filepath.Base(name)
	if err := s.git.Rm(rel); err != nil {
		return s.abandon(rev, fmt.Errorf("failed to unstage %s: %w", rel, err))
	}
	if err := s.git.Commit(git.AppendFooter(core.ChangeReason(ctx, fmt.Sprintf("delete %s", key)))); err != nil {
		return s.abandon(rev, fmt.Errorf("failed to commit deletion of %s: %w", rel, err))
	}
	return nil
}

// Keys lists the keys stored in the vault, sorted.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := s.keyOf(filepath.Join(s.Path, e.Name())); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Sync synchronizes the vault with its git remote.
func (s *Storage) Sync(ctx context.Context) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if s.config.Gitless {
		return fmt.Errorf("cannot sync in gitless mode")
	}
	if !s.git.IsRepo() {
		return fmt.Errorf("path is not a git repository: %s", s.Path)
	}

	unlock, err := s.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	return s.git.Sync()
}

// Watch starts a watcher worker and returns its event stream.
// The channel is closed once ctx is done and the worker has stopped.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	events := make(chan core.Event, 100)
	w := newWatchWorker(s, pattern, events)
	w.owned = true
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// Reconcile compares every key on disk with the last known fingerprints and
// returns the changes that were not observed as they happened.
func (s *Storage) Reconcile(ctx context.Context) ([]core.Event, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	defer s.recordReconcile()

	now := time.Now().Unix()
	var events []core.Event
	onDisk := make(map[string]bool, len(keys))
	for _, key := range keys {
		onDisk[key] = true
		if e, changed := s.observe(key); changed {
			e.Timestamp = now
			events = append(events, e)
		}
	}

	s.mu.Lock()
	for key := range s.fingerprints {
		if !onDisk[key] {
			delete(s.fingerprints, key)
			events = append(events, core.Event{Type: core.EventDelete, Key: key, Timestamp: now})
		}
	}
	s.mu.Unlock()

	return events, nil
}

// observe re-reads key and reports whether it differs from what we last saw.
func (s *Storage) observe(key string) (core.Event, bool) {
	name, err := s.filename(key)
	if err != nil {
		return core.Event{}, false
	}

	data, err := os.ReadFile(name)
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, known := s.fingerprints[key]
	if errors.Is(err, os.ErrNotExist) {
		if !known {
			return core.Event{}, false
		}
		delete(s.fingerprints, key)
		return core.Event{Type: core.EventDelete, Key: key}, true
	}
	if err != nil {
		return core.Event{}, false
	}

	sum := xxhash.Sum64(data)
	if known && prev == sum {
		return core.Event{}, false
	}
	s.fingerprints[key] = sum
	if known {
		return core.Event{Type: core.EventModify, Key: key}, true
	}
	return core.Event{Type: core.EventCreate, Key: key}, true
}

func (s *Storage) remember(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[key] = xxhash.Sum64(data)
}

func (s *Storage) forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fingerprints, key)
}

var _ core.Storage = (*Storage)(nil)
var _ core.Watchable = (*Storage)(nil)
var _ core.Syncable = (*Storage)(nil)
