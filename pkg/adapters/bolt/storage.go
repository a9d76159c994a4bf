// Package bolt implements core.Storage on a single bbolt database file.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"go.etcd.io/bbolt"

	"github.com/aretw0/tagnote/pkg/core"
)

const (
	// DefaultFile is the database file name inside a vault.
	DefaultFile = "tagnote.db"
	// DefaultBucket holds every key.
	DefaultBucket = "tagnote"
)

// Config holds the configuration for the bbolt storage.
type Config struct {
	Path     string // database file
	Bucket   string
	ReadOnly bool
	Timeout  time.Duration // how long to wait for the file lock
	Logger   *slog.Logger
}

// Storage is a core.Storage over one bbolt bucket.
type Storage struct {
	config Config
	bucket []byte

	mu sync.RWMutex
	db *bbolt.DB
}

// NewStorage creates a storage. The database is opened by Initialize.
func NewStorage(config Config) *Storage {
	if config.Bucket == "" {
		config.Bucket = DefaultBucket
	}
	if config.Timeout == 0 {
		config.Timeout = 1 * time.Second
	}
	return &Storage{config: config, bucket: []byte(config.Bucket)}
}

// Initialize opens the database and creates the bucket.
func (s *Storage) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if !s.config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(s.config.Path), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bbolt.Open(s.config.Path, 0600, &bbolt.Options{
		Timeout:  s.config.Timeout,
		ReadOnly: s.config.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.config.Path, err)
	}

	if !s.config.ReadOnly {
		err = db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(s.bucket)
			return err
		})
		if err != nil {
			db.Close()
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("bolt storage opened", "path", s.config.Path, "bucket", s.config.Bucket)
	}
	s.db = db
	return nil
}

// Close releases the database file lock.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var errNotOpen = errors.New("bolt storage is not initialized")

func (s *Storage) database() (*bbolt.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errNotOpen
	}
	return s.db, nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	var data []byte
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		// Values are only valid inside the transaction.
		if v := b.Get([]byte(key)); v != nil {
			data = slices.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if data == nil {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	return data, nil
}

func (s *Storage) Set(ctx context.Context, key string, data []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if key == "" {
		return fmt.Errorf("invalid key %q", key)
	}
	db, err := s.database()
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		if data == nil {
			data = []byte{}
		}
		return tx.Bucket(s.bucket).Put([]byte(key), data)
	})
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := s.database()
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Keys lists keys in byte order, which bbolt keeps sorted.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	db, err := s.database()
	if err != nil {
		return nil, err
	}

	var keys []string
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"path":      s.config.Path,
		"bucket":    s.config.Bucket,
		"read_only": s.config.ReadOnly,
		"open":      s.db != nil,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "bolt-storage"
}

var _ core.Storage = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
