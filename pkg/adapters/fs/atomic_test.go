package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tagnote/pkg/core"
)

func TestSetReplacesNotesDocument(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{Gitless: true})
	name := filepath.Join(s.Path, "notes.json")

	require.NoError(t, s.Set(ctx, "notes", []byte(`[{"id":"1"}]`)))
	require.NoError(t, s.Set(ctx, "notes", []byte(`[{"id":"1"},{"id":"2"}]`)))

	got, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"},{"id":"2"}]`, string(got))

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerm), info.Mode().Perm())

	entries, err := os.ReadDir(s.Path)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), TempFilePrefix, "scratch file left behind")
	}
}

func TestStrayTempFileIsNotAKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{Gitless: true})

	require.NoError(t, s.Set(ctx, "notes", []byte(`[]`)))
	stray := filepath.Join(s.Path, TempFilePrefix+"123.json")
	require.NoError(t, os.WriteFile(stray, []byte(`half a docu`), 0644))

	_, ok := s.keyOf(stray)
	assert.False(t, ok)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, keys)
}

func TestSetFailsWhenVaultVanishes(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{Gitless: true})
	require.NoError(t, os.RemoveAll(s.Path))

	assert.Error(t, s.Set(ctx, "notes", []byte(`[]`)))
	_, known := s.fingerprints["notes"]
	assert.False(t, known)
}

func TestRestoreRevision(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{Gitless: true})
	name := filepath.Join(s.Path, "notes.json")

	t.Run("Puts previous content back", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "notes", []byte(`["old"]`)))
		rev, err := s.capture("notes", name)
		require.NoError(t, err)
		assert.True(t, rev.holds([]byte(`["old"]`)))

		require.NoError(t, s.put(rev, []byte(`["new"]`)))
		require.NoError(t, s.restore(rev))

		got, err := s.Get(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, `["old"]`, string(got))
	})

	t.Run("Removes a file that did not exist", func(t *testing.T) {
		fresh := filepath.Join(s.Path, "tags.json")
		rev, err := s.capture("tags", fresh)
		require.NoError(t, err)
		assert.False(t, rev.existed)

		require.NoError(t, s.put(rev, []byte(`["work"]`)))
		require.NoError(t, s.restore(rev))

		_, err = s.Get(ctx, "tags")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

// lockIndex simulates another git process holding the index.
func lockIndex(t *testing.T, s *Storage) func() {
	t.Helper()
	lock := filepath.Join(s.Path, ".git", "index.lock")
	require.NoError(t, os.WriteFile(lock, nil, 0644))
	return func() { require.NoError(t, os.Remove(lock)) }
}

func TestFailedCommitKeepsPreviousDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Staging fails", func(t *testing.T) {
		s := newTestStorage(t, Config{})
		require.NoError(t, s.Set(ctx, "notes", []byte(`["a"]`)))

		release := lockIndex(t, s)
		err := s.Set(ctx, "notes", []byte(`["changed"]`))
		require.Error(t, err)

		got, err := os.ReadFile(filepath.Join(s.Path, "notes.json"))
		require.NoError(t, err)
		assert.Equal(t, `["a"]`, string(got))

		release()
		require.NoError(t, s.Set(ctx, "notes", []byte(`["b"]`)))
		status, err := s.git.Status()
		require.NoError(t, err)
		assert.Empty(t, status)
	})

	t.Run("Commit hook rejects", func(t *testing.T) {
		s := newTestStorage(t, Config{})
		require.NoError(t, s.Set(ctx, "notes", []byte(`["a"]`)))

		hook := filepath.Join(s.Path, ".git", "hooks", "pre-commit")
		require.NoError(t, os.MkdirAll(filepath.Dir(hook), 0755))
		require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\nexit 1\n"), 0755))

		require.Error(t, s.Set(ctx, "notes", []byte(`["changed"]`)))
		require.Error(t, s.Set(ctx, "tags", []byte(`["work"]`)))

		got, err := s.Get(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, `["a"]`, string(got))
		_, err = s.Get(ctx, "tags")
		assert.ErrorIs(t, err, core.ErrNotFound)

		status, err := s.git.Status()
		require.NoError(t, err)
		assert.Empty(t, status, "index should match the last commit")
	})

	t.Run("Delete is undone", func(t *testing.T) {
		s := newTestStorage(t, Config{})
		require.NoError(t, s.Set(ctx, "notes", []byte(`["a"]`)))

		release := lockIndex(t, s)
		require.Error(t, s.Delete(ctx, "notes"))
		release()

		got, err := s.Get(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, `["a"]`, string(got))
	})
}

func TestFailedCommitDoesNotLoseLaterEdits(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, Config{})

	svc := core.NewService(s)
	svc.Load(ctx)
	note, err := svc.Add(ctx, "a", "", "")
	require.NoError(t, err)

	release := lockIndex(t, s)
	changed := "changed"
	err = svc.Update(ctx, note.ID, core.Patch{Title: &changed})
	require.ErrorIs(t, err, core.ErrPersist)
	release()

	got, err := svc.Get(note.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)

	reloaded := core.NewService(s)
	reloaded.Load(ctx)
	require.Len(t, reloaded.Notes(), 1)
	assert.Equal(t, "a", reloaded.Notes()[0].Title)

	// The retried edit lands on top of what is really stored.
	require.NoError(t, svc.Update(ctx, note.ID, core.Patch{Title: &changed}))
	reloaded.Load(ctx)
	assert.Equal(t, "changed", reloaded.Notes()[0].Title)
}
