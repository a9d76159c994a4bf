// Package audio implements the background-music toggle: one loaded track at a
// time, played through a pluggable Backend.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/tagnote/pkg/core"
)

// DefaultVolume is the initial playback volume.
const DefaultVolume = 0.5

var (
	ErrUnknownTrack = errors.New("unknown track")
	ErrVolumeRange  = errors.New("volume must be between 0 and 1")
)

// Track is one entry of the bundled catalog.
type Track struct {
	Name  string `json:"name"`
	Asset string `json:"asset"`
}

var (
	standardTracks = []Track{
		{Name: "Space", Asset: "audio/space.m4a"},
		{Name: "Stars", Asset: "audio/stars.m4a"},
		{Name: "Galaxy", Asset: "audio/galaxy.m4a"},
		{Name: "Moon", Asset: "audio/moon.m4a"},
	}
	compactTracks = []Track{
		{Name: "Stars", Asset: "audio/stars.m4a"},
		{Name: "Space", Asset: "audio/space.m4a"},
		{Name: "Galaxy", Asset: "audio/galaxy.m4a"},
		{Name: "Destiny", Asset: "audio/destiny.m4a"},
	}
)

// Catalog returns the tracks shipped with the given variant.
func Catalog(caps core.Capabilities) []Track {
	if caps.StandardCatalog {
		return slices.Clone(standardTracks)
	}
	return slices.Clone(compactTracks)
}

// Handle is a loaded, playable sound.
type Handle interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SetVolume(ctx context.Context, volume float64) error
	Unload(ctx context.Context) error
}

// Backend loads tracks into playable handles.
type Backend interface {
	Load(ctx context.Context, track Track, volume float64) (Handle, error)
}

// State is a snapshot of the player.
type State struct {
	Playing bool    `json:"playing"`
	Track   string  `json:"track,omitempty"`
	Volume  float64 `json:"volume"`
}

// Player owns at most one loaded handle.
type Player struct {
	backend Backend
	caps    core.Capabilities
	tracks  []Track
	logger  *slog.Logger

	mu      sync.Mutex
	handle  Handle
	current string
	playing bool
	volume  float64
}

// NewPlayer creates a player for the variant described by caps.
func NewPlayer(backend Backend, caps core.Capabilities, logger *slog.Logger) *Player {
	return &Player{
		backend: backend,
		caps:    caps,
		tracks:  Catalog(caps),
		logger:  logger,
		volume:  DefaultVolume,
	}
}

// Tracks lists the available tracks.
func (p *Player) Tracks() []Track {
	return slices.Clone(p.tracks)
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{Playing: p.playing, Track: p.current, Volume: p.volume}
}

// Toggle flips playback.
//
// With an empty name the loaded track is paused or resumed; nothing happens
// when no track is loaded. Naming the track that is playing pauses it. Naming
// any other track unloads the current one and starts the new one.
func (p *Player) Toggle(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if name == "" {
		return p.toggleCurrentLocked(ctx)
	}

	if name == p.current && p.playing {
		if err := p.handle.Pause(ctx); err != nil {
			return fmt.Errorf("pause %s: %w", name, err)
		}
		p.playing = false
		return nil
	}

	if name == p.current && p.handle != nil {
		return p.toggleCurrentLocked(ctx)
	}

	track, ok := p.find(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownTrack)
	}

	if p.handle != nil {
		if err := p.handle.Unload(ctx); err != nil && p.logger != nil {
			p.logger.Warn("unloading track failed", "track", p.current, "error", err)
		}
		p.handle = nil
		p.current = ""
		p.playing = false
	}

	handle, err := p.backend.Load(ctx, track, p.volume)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := handle.Play(ctx); err != nil {
		_ = handle.Unload(ctx)
		return fmt.Errorf("play %s: %w", name, err)
	}

	p.handle = handle
	p.current = track.Name
	p.playing = true
	if p.logger != nil {
		p.logger.Debug("playing track", "track", track.Name)
	}
	return nil
}

func (p *Player) toggleCurrentLocked(ctx context.Context) error {
	if p.handle == nil {
		return nil
	}
	if p.playing {
		if err := p.handle.Pause(ctx); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		p.playing = false
		return nil
	}
	if err := p.handle.Play(ctx); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	p.playing = true
	return nil
}

// SetVolume sets the playback volume, applied to the loaded track immediately.
func (p *Player) SetVolume(ctx context.Context, volume float64) error {
	if !p.caps.VolumeControl {
		return fmt.Errorf("set volume: %w", core.ErrUnsupported)
	}
	if volume < 0 || volume > 1 {
		return ErrVolumeRange
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != nil {
		if err := p.handle.SetVolume(ctx, volume); err != nil {
			return fmt.Errorf("set volume: %w", err)
		}
	}
	p.volume = volume
	return nil
}

// Close unloads the loaded track, if any.
func (p *Player) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == nil {
		return nil
	}
	err := p.handle.Unload(ctx)
	p.handle = nil
	p.current = ""
	p.playing = false
	return err
}

func (p *Player) find(name string) (Track, bool) {
	for _, t := range p.tracks {
		if t.Name == name {
			return t, true
		}
	}
	return Track{}, false
}
