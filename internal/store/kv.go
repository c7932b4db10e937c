// Package store persists codes, delivery attempts and run summaries in a
// prefix-addressable key-value store.
package store

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("key not found")

const DefaultPageSize = 100

type Entry struct {
	Key   string
	Value []byte
}

// Page is one slice of a prefix listing. Cursor is the last key returned and
// is empty once the listing is exhausted.
type Page struct {
	Entries []Entry
	Cursor  string
}

// KV is the storage contract. Keys are listed in ascending byte order; a
// cursor resumes strictly after the given key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	List(ctx context.Context, prefix, cursor string, limit int) (Page, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Flusher is implemented by stores that buffer writes in memory.
type Flusher interface {
	Flush() error
}

// Walk visits every entry under prefix page by page until fn returns an
// error or the listing ends.
func Walk(ctx context.Context, kv KV, prefix string, fn func(Entry) error) error {
	cursor := ""
	for {
		page, err := kv.List(ctx, prefix, cursor, DefaultPageSize)
		if err != nil {
			return err
		}
		for _, e := range page.Entries {
			if err := fn(e); err != nil {
				return err
			}
		}
		if page.Cursor == "" {
			return nil
		}
		cursor = page.Cursor
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return limit
}

func startAfter(prefix, cursor string) string {
	if cursor == "" || !strings.HasPrefix(cursor, prefix) {
		return prefix
	}
	return cursor
}
