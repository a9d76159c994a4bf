// Package memory implements core.Storage in process memory.
// It backs ephemeral sessions and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/tagnote/pkg/core"
)

type subscriber struct {
	pattern string
	ch      chan core.Event
}

// Storage is a map-backed core.Storage.
type Storage struct {
	mu       sync.RWMutex
	data     map[string][]byte
	subs     []*subscriber
	readOnly bool
	failWith error
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

// SetReadOnly makes every write return core.ErrReadOnly.
func (s *Storage) SetReadOnly(readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly = readOnly
}

// FailWrites makes every subsequent write return err. Pass nil to recover.
func (s *Storage) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Storage) Initialize(ctx context.Context) error { return nil }

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	return slices.Clone(data), nil
}

func (s *Storage) Set(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	if err := s.writableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	_, existed := s.data[key]
	s.data[key] = slices.Clone(data)
	s.mu.Unlock()

	eType := core.EventCreate
	if existed {
		eType = core.EventModify
	}
	s.publish(ctx, core.Event{Type: eType, Key: key, Timestamp: time.Now().Unix()})
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	if err := s.writableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	_, existed := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()

	if existed {
		s.publish(ctx, core.Event{Type: core.EventDelete, Key: key, Timestamp: time.Now().Unix()})
	}
	return nil
}

func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *Storage) writableLocked() error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	return s.failWith
}

// Watch emits an event for every write to a key matching pattern.
// The channel is closed when ctx is done.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %s", pattern)
	}

	sub := &subscriber{pattern: pattern, ch: make(chan core.Event, 16)}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.subs = slices.DeleteFunc(s.subs, func(x *subscriber) bool { return x == sub })
		s.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

func (s *Storage) publish(ctx context.Context, e core.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs {
		if ok, _ := doublestar.Match(sub.pattern, e.Key); !ok {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			// Slow consumer; drop rather than block the writer.
		}
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "memory-storage"
}

var _ core.Storage = (*Storage)(nil)
var _ core.Watchable = (*Storage)(nil)
