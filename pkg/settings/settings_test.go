package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tagnote/pkg/adapters/memory"
	"github.com/aretw0/tagnote/pkg/codec"
	"github.com/aretw0/tagnote/pkg/core"
)

func TestFontSize(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := New(store, codec.JSON(), nil)

	assert.Equal(t, DefaultFontSize, s.FontSize(ctx))

	require.NoError(t, s.SetFontSize(ctx, 24))
	assert.Equal(t, 24, s.FontSize(ctx))

	raw, err := store.Get(ctx, core.FontSizeKey)
	require.NoError(t, err)
	assert.Equal(t, "24", string(raw))

	assert.True(t, errors.Is(s.SetFontSize(ctx, MinFontSize-1), ErrFontSizeRange))
	assert.True(t, errors.Is(s.SetFontSize(ctx, MaxFontSize+1), ErrFontSizeRange))
	assert.Equal(t, 24, s.FontSize(ctx))
}

func TestFontSize_CorruptFallsBack(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, core.FontSizeKey, []byte("huge")))

	assert.Equal(t, DefaultFontSize, New(store, codec.JSON(), nil).FontSize(ctx))
}

func TestBackground(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := New(store, codec.JSON(), nil)

	assert.Equal(t, DefaultBackground, s.Background(ctx))

	require.NoError(t, s.SetBackground(ctx, "blue"))
	assert.Equal(t, "blue", s.Background(ctx))

	assert.True(t, errors.Is(s.SetBackground(ctx, "neon"), ErrUnknownBackground))
	assert.Equal(t, "blue", s.Background(ctx))

	// A stale id written by something else reads as the default.
	require.NoError(t, store.Set(ctx, core.BackgroundKey, []byte(`"retired"`)))
	assert.Equal(t, DefaultBackground, s.Background(ctx))
}

func TestWritesPropagateErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := New(store, codec.JSON(), nil)

	store.SetReadOnly(true)
	assert.True(t, errors.Is(s.SetFontSize(ctx, 18), core.ErrReadOnly))
	assert.True(t, errors.Is(s.SetBackground(ctx, "gray"), core.ErrReadOnly))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := New(store, codec.JSON(), nil)

	require.NoError(t, s.SetFontSize(ctx, 28))
	require.NoError(t, s.SetBackground(ctx, "gray"))
	require.NoError(t, s.Reset(ctx))

	assert.Equal(t, DefaultFontSize, s.FontSize(ctx))
	assert.Equal(t, DefaultBackground, s.Background(ctx))
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Resetting again is harmless.
	require.NoError(t, s.Reset(ctx))

	store.SetReadOnly(true)
	assert.True(t, errors.Is(s.Reset(ctx), core.ErrReadOnly))
}

func TestBackgroundsIsACopy(t *testing.T) {
	list := Backgrounds()
	assert.Equal(t, []string{"space", "space1", "space2", "space3", "blue", "gray"}, list)
	list[0] = "mutated"
	assert.True(t, ValidBackground("space"))
}
