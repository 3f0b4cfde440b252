package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, found, err := store.Get(ctx, "cart:a")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.Set(ctx, "cart:a", "[]"))
	require.NoError(t, store.Set(ctx, "cart:a", `[{"id":1,"amount":1}]`))

	val, found, err := store.Get(ctx, "cart:a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[{"id":1,"amount":1}]`, val)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "cart:shared", "[]")
			_, _, _ = store.Get(ctx, "cart:shared")
		}()
	}
	wg.Wait()

	_, found, err := store.Get(ctx, "cart:shared")
	require.NoError(t, err)
	require.True(t, found)
}
