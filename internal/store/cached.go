package store

import (
	"context"

	"shiftwatch/internal/providers"
)

// CachedKV serves Get from a read-through cache and keeps it coherent on
// every write. Listings always hit the backing store.
type CachedKV struct {
	KV
	cache providers.CacheProviderInterface
}

func NewCachedKV(backend KV, cache providers.CacheProviderInterface) *CachedKV {
	return &CachedKV{KV: backend, cache: cache}
}

func (c *CachedKV) Get(ctx context.Context, key string) ([]byte, error) {
	if val, ok := c.cache.Get(key); ok {
		return val, nil
	}
	val, err := c.KV.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, val)
	return val, nil
}

func (c *CachedKV) Put(ctx context.Context, key string, value []byte) error {
	if err := c.KV.Put(ctx, key, value); err != nil {
		c.cache.Del(key)
		return err
	}
	c.cache.Set(key, value)
	return nil
}

func (c *CachedKV) Delete(ctx context.Context, key string) error {
	c.cache.Del(key)
	return c.KV.Delete(ctx, key)
}

func (c *CachedKV) Flush() error {
	if f, ok := c.KV.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
