package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tagnote/pkg/core"
)

func open(t *testing.T, path string) *Storage {
	t.Helper()
	s := NewStorage(Config{Path: path})
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	ctx := context.Background()
	s := open(t, filepath.Join(t.TempDir(), "nested", DefaultFile))

	_, err := s.Get(ctx, core.NotesKey)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.Set(ctx, core.NotesKey, []byte(`[]`)))
	require.NoError(t, s.Set(ctx, core.FontSizeKey, []byte(`22`)))

	got, err := s.Get(ctx, core.NotesKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"font_size", "notes"}, keys)

	require.NoError(t, s.Delete(ctx, core.NotesKey))
	_, err = s.Get(ctx, core.NotesKey)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, s.Delete(ctx, core.NotesKey))

	assert.Error(t, s.Set(ctx, "", []byte("x")))
}

func TestEmptyValueIsStored(t *testing.T) {
	ctx := context.Background()
	s := open(t, filepath.Join(t.TempDir(), DefaultFile))

	require.NoError(t, s.Set(ctx, "blank", nil))
	got, err := s.Get(ctx, "blank")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFile)

	s := NewStorage(Config{Path: path})
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Set(ctx, core.BackgroundKey, []byte(`"blue"`)))
	require.NoError(t, s.Close())

	ro := NewStorage(Config{Path: path, ReadOnly: true})
	require.NoError(t, ro.Initialize(ctx))
	defer ro.Close()

	got, err := ro.Get(ctx, core.BackgroundKey)
	require.NoError(t, err)
	assert.Equal(t, `"blue"`, string(got))
	assert.ErrorIs(t, ro.Set(ctx, core.BackgroundKey, []byte(`"gray"`)), core.ErrReadOnly)
}

func TestLockedFileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	open(t, path)

	second := NewStorage(Config{Path: path, Timeout: 50 * time.Millisecond})
	assert.Error(t, second.Initialize(context.Background()))
}

func TestNotInitialized(t *testing.T) {
	s := NewStorage(Config{Path: filepath.Join(t.TempDir(), DefaultFile)})
	_, err := s.Get(context.Background(), core.NotesKey)
	assert.ErrorIs(t, err, errNotOpen)
	assert.Equal(t, "bolt-storage", s.ComponentType())
}
