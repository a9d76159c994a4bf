package tagnote

import (
	"log/slog"

	"github.com/aretw0/tagnote/internal/platform"
	"github.com/aretw0/tagnote/pkg/audio"
	"github.com/aretw0/tagnote/pkg/core"
)

// --- Types ---

// App bundles the note store, settings and audio player.
type App = platform.App

// Note is a single note record.
type Note = core.Note

// Patch lists the fields to change in Update. Nil fields are kept.
type Patch = core.Patch

// TagGroup is one section of the grouped-by-tag view.
type TagGroup = core.TagGroup

// Capabilities toggles the features that differ between app variants.
type Capabilities = core.Capabilities

// FileConfig is the content of a vault's tagnote.yaml.
type FileConfig = platform.FileConfig

// --- Configuration ---

// Option defines a functional option for configuring tagnote.
type Option = platform.Option

// WithAutoInit enables automatic initialization of the vault.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables a git commit per write.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage injects a custom storage adapter.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithFormat selects the document encoding ("json" or "yaml").
func WithFormat(name string) Option {
	return platform.WithFormat(name)
}

// WithVariant selects the app variant ("standard" or "compact").
func WithVariant(name string) Option {
	return platform.WithVariant(name)
}

// WithCapabilities sets the feature flags directly.
func WithCapabilities(c Capabilities) Option {
	return platform.WithCapabilities(c)
}

// WithAudioBackend sets the playback backend.
func WithAudioBackend(b audio.Backend) Option {
	return platform.WithAudioBackend(b)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".tagnote").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithEventBuffer sets the buffer size of watch channels.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithReadOnly rejects every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the dev sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New opens a vault and returns its loaded services.
func New(path string, opts ...Option) (*App, error) {
	return platform.New(path, opts...)
}

// Init prepares the storage without loading any service.
func Init(path string, opts ...Option) (core.Storage, error) {
	return platform.Init(path, opts...)
}

// --- Operations ---

// Sync performs a synchronization (pull/push) of the vault.
func Sync(path string, opts ...Option) error {
	return platform.Sync(path, opts...)
}

// --- Helpers ---

// String returns a pointer to s, for building a Patch.
func String(s string) *string {
	return &s
}

// --- Safety & Utils ---

// ResolveVaultPath determines the actual path for the vault based on safety rules.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	return platform.ResolveVaultPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindVaultRoot looks upwards for a .tagnote directory or tagnote.yaml.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// LoadConfig reads the tagnote.yaml of a vault root.
func LoadConfig(root string) (FileConfig, error) {
	return platform.LoadConfig(root)
}
