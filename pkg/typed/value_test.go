package typed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tagnote/pkg/adapters/memory"
	"github.com/aretw0/tagnote/pkg/codec"
	"github.com/aretw0/tagnote/pkg/core"
	"github.com/aretw0/tagnote/pkg/typed"
)

type profile struct {
	Name string `json:"name" yaml:"name"`
	Age  int    `json:"age" yaml:"age"`
}

func TestValue_StoreLoad(t *testing.T) {
	ctx := context.Background()

	for _, c := range []core.Codec{codec.JSON(), codec.YAML()} {
		t.Run(c.Name(), func(t *testing.T) {
			store := memory.New()
			v := typed.NewValue[profile](store, c, "profile")

			_, ok, err := v.Load(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, v.Store(ctx, profile{Name: "Alice", Age: 30}))

			got, ok, err := v.Load(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, profile{Name: "Alice", Age: 30}, got)

			require.NoError(t, v.Clear(ctx))
			_, ok, _ = v.Load(ctx)
			assert.False(t, ok)
		})
	}
}

func TestValue_LoadOr(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	v := typed.NewValue[int](store, codec.JSON(), "font_size")

	got, err := v.LoadOr(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, got)

	require.NoError(t, store.Set(ctx, "font_size", []byte("not a number")))
	got, err = v.LoadOr(ctx, 20)
	assert.Error(t, err)
	assert.Equal(t, 20, got)
}

func TestValue_StorePropagatesWriteErrors(t *testing.T) {
	store := memory.New()
	boom := errors.New("boom")
	store.FailWrites(boom)

	v := typed.NewValue[string](store, codec.JSON(), "background_image")
	err := v.Store(context.Background(), "blue")
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, "background_image", v.Key())
}
