package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), val...), nil
}

func (m *MemoryKV) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) List(ctx context.Context, prefix, cursor string, limit int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	limit = normalizeLimit(limit)
	start := startAfter(prefix, cursor)

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) && (k > start || (cursor == "" && k == start)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var page Page
	for i, k := range keys {
		if i == limit {
			page.Cursor = page.Entries[len(page.Entries)-1].Key
			break
		}
		page.Entries = append(page.Entries, Entry{Key: k, Value: append([]byte(nil), m.data[k]...)})
	}
	return page, nil
}

func (m *MemoryKV) Close() error { return nil }

// snapshot copies the full contents.
func (m *MemoryKV) snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

func (m *MemoryKV) replace(data map[string][]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
}
