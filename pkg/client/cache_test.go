package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimercado/unimercado-api/pkg/client"
)

func TestQueryCache_GetCacheaHastaInvalidar(t *testing.T) {
	cache := client.NewQueryCache()
	ctx := context.Background()
	fetches := 0
	fetch := func(ctx context.Context) (any, error) {
		fetches++
		return fetches, nil
	}

	v, err := cache.Get(ctx, "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Segunda lectura: sirve cache, no refetchea
	v, err = cache.Get(ctx, "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, fetches)

	cache.Invalidate("k")
	v, err = cache.Get(ctx, "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "tras invalidar debe refetchear")
}

func TestQueryCache_FetchFallido_NoCachea(t *testing.T) {
	cache := client.NewQueryCache()
	ctx := context.Background()
	boom := errors.New("red caída")

	_, err := cache.Get(ctx, "k", func(ctx context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	// El error no dejó valor: el próximo Get vuelve a intentar
	v, err := cache.Get(ctx, "k", func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestQueryCache_InvalidateAll(t *testing.T) {
	cache := client.NewQueryCache()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_, err := cache.Get(ctx, k, func(ctx context.Context) (any, error) { return k, nil })
		require.NoError(t, err)
	}

	cache.InvalidateAll()
	for _, k := range []string{"a", "b", "c"} {
		_, ok := cache.Peek(k)
		assert.False(t, ok)
	}
}

func TestQueryCache_InvalidateKeyAjena_NoAfectaOtras(t *testing.T) {
	cache := client.NewQueryCache()
	ctx := context.Background()

	_, err := cache.Get(ctx, "a", func(ctx context.Context) (any, error) { return 1, nil })
	require.NoError(t, err)

	cache.Invalidate("b")
	_, ok := cache.Peek("a")
	assert.True(t, ok, "invalidar otra key no debe tocar esta")
}
