package core_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tagnote/pkg/core"
)

func TestService_ConcurrentWritesAreNotLost(t *testing.T) {
	const n = 40
	ctx := context.Background()
	svc, store := newService(t)

	var wg sync.WaitGroup
	errs := make(chan error, 3*n)
	ids := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			note, err := svc.Add(ctx, fmt.Sprintf("note %d", i), "", fmt.Sprintf("t%d", i%2))
			if err != nil {
				errs <- err
				return
			}
			ids <- note.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	var added []string
	for id := range ids {
		added = append(added, id)
	}
	require.Len(t, added, n)

	// Content edits race with retags of the same notes; both must land.
	for _, id := range added {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			content := "edited " + id
			errs <- svc.Update(ctx, id, core.Patch{Content: &content})
		}(id)
	}
	for i := 0; i < n/4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RetagAll(ctx, "t1", "t0")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	notes := svc.Notes()
	assert.Equal(t, notes, persisted(t, store))
	require.Len(t, notes, n)

	seen := make(map[string]bool, n)
	for _, note := range notes {
		assert.False(t, seen[note.ID], "duplicate id %s", note.ID)
		seen[note.ID] = true
		assert.Equal(t, "edited "+note.ID, note.Content)
		assert.Equal(t, "t0", note.Tag)
	}
	for _, id := range added {
		assert.True(t, seen[id], "note %s missing", id)
	}
	assert.Equal(t, []string{"t0"}, svc.Tags())
}
