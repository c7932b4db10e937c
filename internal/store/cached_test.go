package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftwatch/internal/testutil"
)

type countingKV struct {
	*MemoryKV
	gets   int
	putErr error
}

func (c *countingKV) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets++
	return c.MemoryKV.Get(ctx, key)
}

func (c *countingKV) Put(ctx context.Context, key string, value []byte) error {
	if c.putErr != nil {
		return c.putErr
	}
	return c.MemoryKV.Put(ctx, key, value)
}

func TestCachedKV_ReadThrough(t *testing.T) {
	ctx := context.Background()
	backend := &countingKV{MemoryKV: NewMemoryKV()}
	require.NoError(t, backend.MemoryKV.Put(ctx, "codes/a", []byte("v")))
	kv := NewCachedKV(backend, testutil.NewMockCache())

	for i := 0; i < 3; i++ {
		val, err := kv.Get(ctx, "codes/a")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), val)
	}
	assert.Equal(t, 1, backend.gets)

	_, err := kv.Get(ctx, "codes/missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = kv.Get(ctx, "codes/missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, backend.gets)
}

func TestCachedKV_WritesKeepCacheCoherent(t *testing.T) {
	ctx := context.Background()
	backend := &countingKV{MemoryKV: NewMemoryKV()}
	cache := testutil.NewMockCache()
	kv := NewCachedKV(backend, cache)

	require.NoError(t, kv.Put(ctx, "codes/a", []byte("1")))
	val, err := kv.Get(ctx, "codes/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
	assert.Equal(t, 0, backend.gets)

	require.NoError(t, kv.Delete(ctx, "codes/a"))
	_, err = kv.Get(ctx, "codes/a")
	assert.ErrorIs(t, err, ErrNotFound)

	backend.putErr = errors.New("disk full")
	require.NoError(t, backend.MemoryKV.Put(ctx, "codes/b", []byte("old")))
	_, _ = kv.Get(ctx, "codes/b")
	assert.Error(t, kv.Put(ctx, "codes/b", []byte("new")))
	_, cached := cache.Get("codes/b")
	assert.False(t, cached)
}

func TestCachedKV_FlushDelegates(t *testing.T) {
	assert.NoError(t, NewCachedKV(NewMemoryKV(), testutil.NewMockCache()).Flush())
}
