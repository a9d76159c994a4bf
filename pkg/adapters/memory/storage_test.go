package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tagnote/pkg/core"
)

func TestStorage_CRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Get(ctx, "notes")
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, s.Set(ctx, "notes", []byte("[]")))
	got, err := s.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	// Returned slices are copies.
	got[0] = 'x'
	again, _ := s.Get(ctx, "notes")
	assert.Equal(t, "[]", string(again))

	require.NoError(t, s.Set(ctx, "font_size", []byte("20")))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"font_size", "notes"}, keys)

	require.NoError(t, s.Delete(ctx, "notes"))
	require.NoError(t, s.Delete(ctx, "notes"))
	_, err = s.Get(ctx, "notes")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestStorage_WriteFailures(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.SetReadOnly(true)
	assert.True(t, errors.Is(s.Set(ctx, "k", nil), core.ErrReadOnly))
	s.SetReadOnly(false)

	boom := errors.New("disk full")
	s.FailWrites(boom)
	assert.True(t, errors.Is(s.Set(ctx, "k", nil), boom))
	assert.True(t, errors.Is(s.Delete(ctx, "k"), boom))
	s.FailWrites(nil)
	assert.NoError(t, s.Set(ctx, "k", nil))
}

func TestStorage_Watch(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "{notes,tags}")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "font_size", []byte("20")))
	require.NoError(t, s.Set(ctx, "notes", []byte("[]")))
	require.NoError(t, s.Set(ctx, "notes", []byte("[ ]")))

	expect := []core.EventType{core.EventCreate, core.EventModify}
	for _, want := range expect {
		select {
		case e := <-events:
			assert.Equal(t, "notes", e.Key)
			assert.Equal(t, want, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %s", want)
		}
	}

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestStorage_WatchInvalidPattern(t *testing.T) {
	_, err := New().Watch(context.Background(), "[")
	assert.Error(t, err)
}
