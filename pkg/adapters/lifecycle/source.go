// Package lifecycle turns note store events into lifecycle events that carry
// the size of the collection once the change was applied.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tagnote/pkg/core"
)

// Snapshot is the read side of the note service.
type Snapshot interface {
	Notes() []core.Note
	Tags() []string
}

// ChangeEvent is one reported change. When a save arrives as a burst of
// events, Event is the last of them and Folded counts the ones absorbed.
type ChangeEvent struct {
	core.Event
	Notes  int
	Tags   int
	Folded int
}

// String implements lifecycle.Event.
func (e ChangeEvent) String() string {
	return fmt.Sprintf("%s: %d note(s), %d tag(s)", e.Event, e.Notes, e.Tags)
}

type changeSource struct {
	events <-chan core.Event
	snap   Snapshot
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits a ChangeEvent per burst of
// events, counted against snap after the burst.
func NewSource(events <-chan core.Event, snap Snapshot) lifecycle.Source {
	return &changeSource{
		events: events,
		snap:   snap,
		out:    make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start runs the bridge under lifecycle.Go. Events closes when the input
// channel closes or ctx is done.
func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				change, open := s.fold(e)
				select {
				case s.out <- change:
				case <-ctx.Done():
					return nil
				}
				if !open {
					return nil
				}
			}
		}
	})
	return nil
}

// fold absorbs the events already queued behind e. open is false when the
// input closed while draining.
func (s *changeSource) fold(e core.Event) (change ChangeEvent, open bool) {
	change.Event = e
	open = true
drain:
	for {
		select {
		case next, ok := <-s.events:
			if !ok {
				open = false
				break drain
			}
			change.Event = next
			change.Folded++
		default:
			break drain
		}
	}

	change.Notes = len(s.snap.Notes())
	change.Tags = len(s.snap.Tags())
	return change, open
}
