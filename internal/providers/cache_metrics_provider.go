package providers

import (
	"shiftwatch/internal/structures"
	"strings"
)

// The API response cache and the store read-through cache share one
// freecache instance; keys with APICacheKeyPrefix belong to the API.
const (
	APICacheKeyPrefix = "api:"

	CacheLayerAPI   = "api"
	CacheLayerStore = "store"
)

func CacheLayer(key string) string {
	if strings.HasPrefix(key, APICacheKeyPrefix) {
		return CacheLayerAPI
	}
	return CacheLayerStore
}

// MetricsCacheProvider counts hits and misses per layer on every Get.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits(CacheLayer(key))
	} else {
		c.metrics.IncCacheMisses(CacheLayer(key))
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Del(key string) {
	c.inner.Del(key)
}

func (c *MetricsCacheProvider) Clear() {
	c.inner.Clear()
}

// NewInstrumentedCacheProvider returns the configured cache with hit/miss
// metrics. A disabled cache is returned unwrapped so it reports no misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
