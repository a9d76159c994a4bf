// Package typed provides type-safe access to single keys of a core.Storage.
package typed

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tagnote/pkg/core"
)

// Value binds a storage key to a Go type T, encoded with a codec.
type Value[T any] struct {
	storage core.Storage
	codec   core.Codec
	key     string
}

// NewValue creates a typed view over key.
func NewValue[T any](storage core.Storage, codec core.Codec, key string) *Value[T] {
	return &Value[T]{storage: storage, codec: codec, key: key}
}

// Key returns the storage key.
func (v *Value[T]) Key() string {
	return v.key
}

// Load decodes the stored value. ok is false when the key is absent.
func (v *Value[T]) Load(ctx context.Context) (value T, ok bool, err error) {
	data, err := v.storage.Get(ctx, v.key)
	if errors.Is(err, core.ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("read %s: %w", v.key, err)
	}
	if err := v.codec.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("decode %s: %w", v.key, err)
	}
	return value, true, nil
}

// LoadOr returns the stored value, or fallback when it is absent or unreadable.
// The read error, if any, is still returned so callers can log it.
func (v *Value[T]) LoadOr(ctx context.Context, fallback T) (T, error) {
	value, ok, err := v.Load(ctx)
	if err != nil || !ok {
		return fallback, err
	}
	return value, nil
}

// Store encodes and writes value.
func (v *Value[T]) Store(ctx context.Context, value T) error {
	data, err := v.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", v.key, err)
	}
	if err := v.storage.Set(ctx, v.key, data); err != nil {
		return fmt.Errorf("write %s: %w", v.key, err)
	}
	return nil
}

// Clear removes the key.
func (v *Value[T]) Clear(ctx context.Context) error {
	return v.storage.Delete(ctx, v.key)
}
