package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tagnote/pkg/core"
)

func nextEvent(t *testing.T, ch <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "events channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return core.Event{}
	}
}

func TestWatchExternalChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestStorage(t, Config{Gitless: true})
	require.NoError(t, s.Set(ctx, "notes", []byte(`[]`)))

	events, err := s.Watch(ctx, "notes")
	require.NoError(t, err)

	// Own writes are silent.
	require.NoError(t, s.Set(ctx, "notes", []byte(`[{"id":"a"}]`)))
	// Keys outside the pattern are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Path, "font_size.json"), []byte(`22`), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(s.Path, "notes.json"), []byte(`[{"id":"b"}]`), 0644))
	e := nextEvent(t, events)
	assert.Equal(t, core.EventModify, e.Type)
	assert.Equal(t, "notes", e.Key)

	require.NoError(t, os.Remove(filepath.Join(s.Path, "notes.json")))
	// A truncating write may surface as more than one modification.
	for e.Type != core.EventDelete {
		e = nextEvent(t, events)
		assert.Equal(t, "notes", e.Key)
	}

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}

func TestWatchInvalidPattern(t *testing.T) {
	s := newTestStorage(t, Config{Gitless: true})
	_, err := s.Watch(context.Background(), "[")
	assert.Error(t, err)
}
