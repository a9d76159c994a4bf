package platform

import (
	"log/slog"

	"github.com/aretw0/tagnote/pkg/audio"
	"github.com/aretw0/tagnote/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterBolt   = "bolt"
	AdapterMemory = "memory"
)

// options holds the internal configuration for a tagnote app.
type options struct {
	storage      core.Storage
	logger       *slog.Logger
	adapter      string
	format       string
	capabilities core.Capabilities
	audio        audio.Backend
	config       map[string]interface{}
}

// Option defines a functional option for configuring tagnote.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:      AdapterFS,
		format:       "json",
		capabilities: core.VariantStandard,
		config:       make(map[string]interface{}),
	}
}

func parse(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithAutoInit enables automatic initialization of the vault (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables git commits on every write.
// When unset, versioning follows the presence of a .git directory in the vault.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["gitless"] = !enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage injects a storage adapter. Adapter selection is skipped.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithAdapter selects the storage adapter by name: "fs", "bolt" or "memory".
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithFormat selects the document encoding, "json" or "yaml".
func WithFormat(name string) Option {
	return func(o *options) {
		o.format = name
	}
}

// WithCapabilities selects the feature set of the app variant.
func WithCapabilities(c core.Capabilities) Option {
	return func(o *options) {
		o.capabilities = c
	}
}

// WithVariant selects capabilities by variant name. Unknown names fail in New.
func WithVariant(name string) Option {
	return func(o *options) {
		o.config["variant"] = name
	}
}

// WithAudioBackend sets the playback backend. Defaults to a silent backend.
func WithAudioBackend(b audio.Backend) Option {
	return func(o *options) {
		o.audio = b
	}
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".tagnote").
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithEventBuffer sets the buffer size of watch channels.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Every write returns core.ErrReadOnly.
// 2. Initialization (Mkdir, Git Init) is skipped.
// 3. The dev sandbox is bypassed (uses the real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true), vaults are redirected to a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}
