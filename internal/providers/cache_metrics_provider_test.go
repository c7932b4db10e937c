package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type cacheMetricsTestInner struct {
	data map[string][]byte
}

func (c *cacheMetricsTestInner) Get(key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}
func (c *cacheMetricsTestInner) Set(key string, value []byte) { c.data[key] = value }
func (c *cacheMetricsTestInner) Del(key string)               { delete(c.data, key) }
func (c *cacheMetricsTestInner) Clear()                       { c.data = map[string][]byte{} }

func TestMetricsCacheProvider_Hit(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{"key1": []byte("val1")}}
	metrics := &mockMetrics{}
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, []byte("val1"), val)
	assert.Equal(t, 1, metrics.hits[CacheLayerStore])
	assert.Empty(t, metrics.misses)
}

func TestMetricsCacheProvider_Miss(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	metrics := &mockMetrics{}
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	val, ok := cache.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Empty(t, metrics.hits)
	assert.Equal(t, 1, metrics.misses[CacheLayerStore])
}

func TestMetricsCacheProvider_SetAndDelDelegate(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{}}
	cache := &MetricsCacheProvider{inner: inner, metrics: &mockMetrics{}}

	cache.Set("key2", []byte("val2"))
	val, ok := inner.Get("key2")
	assert.True(t, ok)
	assert.Equal(t, []byte("val2"), val)

	cache.Del("key2")
	_, ok = inner.Get("key2")
	assert.False(t, ok)
}

func TestMetricsCacheProvider_MultipleOperations(t *testing.T) {
	inner := &cacheMetricsTestInner{data: map[string][]byte{
		"codes/abc":  []byte("1"),
		"api:codes:": []byte("[]"),
	}}
	metrics := &mockMetrics{}
	cache := &MetricsCacheProvider{inner: inner, metrics: metrics}

	cache.Get("codes/abc")       // store hit
	cache.Get("codes/def")       // store miss
	cache.Get("api:codes:")      // api hit
	cache.Get("api:runs:latest") // api miss
	cache.Get("codes/abc")       // store hit

	assert.Equal(t, map[string]int{CacheLayerStore: 2, CacheLayerAPI: 1}, metrics.hits)
	assert.Equal(t, map[string]int{CacheLayerStore: 1, CacheLayerAPI: 1}, metrics.misses)
}

func TestNewInstrumentedCacheProvider_DisabledIsUnwrapped(t *testing.T) {
	c := NewInstrumentedCacheProvider(cacheConfig(false, 1, 5), &cacheTestLogger{}, &mockMetrics{})
	assert.IsType(t, &noopCache{}, c)
}

func TestCacheLayer(t *testing.T) {
	assert.Equal(t, CacheLayerAPI, CacheLayer("api:deliveries:100"))
	assert.Equal(t, CacheLayerStore, CacheLayer("codes/0f1e"))
	assert.Equal(t, CacheLayerStore, CacheLayer("runs/latest"))
}
