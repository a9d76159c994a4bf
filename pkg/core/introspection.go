package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Loaded          bool         `json:"loaded"`
	Notes           int          `json:"notes"`
	Tags            int          `json:"tags"`
	Placeholders    int          `json:"placeholders"`
	Format          string       `json:"format"`
	EventBufferSize int          `json:"event_buffer_size"`
	StorageType     string       `json:"storage_type"`
	Capabilities    Capabilities `json:"capabilities"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storageType := "unknown"
	if s.storage != nil {
		storageType = "storage"
		if comp, ok := s.storage.(introspection.Component); ok {
			storageType = comp.ComponentType()
		}
	}

	return ServiceState{
		Loaded:          s.loaded,
		Notes:           len(s.notes),
		Tags:            len(s.tagsLocked()),
		Placeholders:    len(s.placeholders),
		Format:          s.codec.Name(),
		EventBufferSize: s.eventBufferSize,
		StorageType:     storageType,
		Capabilities:    s.caps,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "note-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
