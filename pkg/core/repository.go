package core

import "context"

// Well-known storage keys.
const (
	NotesKey      = "notes"
	TagsKey       = "tags"
	FontSizeKey   = "font_size"
	BackgroundKey = "background_image"
)

// Storage defines the key-value contract every persistence adapter fulfils.
// Values are opaque byte documents; encoding belongs to a Codec.
type Storage interface {
	// Get returns the document stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the document stored under key. The write is all or nothing.
	Set(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key.
	Keys(ctx context.Context) ([]string, error)
	// Initialize ensures the underlying storage is ready (directories, buckets, git init).
	Initialize(ctx context.Context) error
}

// Watchable is implemented by storages that can report external changes.
type Watchable interface {
	// Watch emits an Event for every change to a key matching pattern (doublestar syntax).
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Syncable defines an interface for storages that support synchronization with a remote.
type Syncable interface {
	// Sync synchronizes the local state with a remote source (e.g. git pull/push).
	Sync(ctx context.Context) error
}

// Codec turns values into stored documents and back.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason (commit message) to Set/Delete.
const ChangeReasonKey contextKey = "change_reason"

// WithChangeReason attaches a change reason to ctx.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, ChangeReasonKey, reason)
}

// ChangeReason extracts the change reason from ctx, or fallback when absent.
func ChangeReason(ctx context.Context, fallback string) string {
	if val, ok := ctx.Value(ChangeReasonKey).(string); ok && val != "" {
		return val
	}
	return fallback
}
