package audio

import (
	"context"
	"sync"
)

// SilentBackend tracks playback state without producing sound.
// It serves headless runs and tests.
type SilentBackend struct {
	mu     sync.Mutex
	loaded []*SilentHandle
}

// NewSilentBackend returns an empty SilentBackend.
func NewSilentBackend() *SilentBackend {
	return &SilentBackend{}
}

func (b *SilentBackend) Load(ctx context.Context, track Track, volume float64) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := &SilentHandle{Track: track, volume: volume}
	b.mu.Lock()
	b.loaded = append(b.loaded, h)
	b.mu.Unlock()
	return h, nil
}

// Handles returns every handle the backend has loaded, oldest first.
func (b *SilentBackend) Handles() []*SilentHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*SilentHandle, len(b.loaded))
	copy(out, b.loaded)
	return out
}

// SilentHandle is the Handle produced by SilentBackend.
type SilentHandle struct {
	Track Track

	mu       sync.Mutex
	playing  bool
	unloaded bool
	volume   float64
}

func (h *SilentHandle) Play(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = true
	return nil
}

func (h *SilentHandle) Pause(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	return nil
}

func (h *SilentHandle) SetVolume(ctx context.Context, volume float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = volume
	return nil
}

func (h *SilentHandle) Unload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.unloaded = true
	return nil
}

// Playing reports whether the handle is playing.
func (h *SilentHandle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// Unloaded reports whether the handle was released.
func (h *SilentHandle) Unloaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unloaded
}

// Volume returns the last volume applied to the handle.
func (h *SilentHandle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}
