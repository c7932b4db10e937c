package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftwatch/internal/testutil"
)

// kvContract exercises the behaviour every backend must share.
func kvContract(t *testing.T, kv KV) {
	ctx := context.Background()

	_, err := kv.Get(ctx, "codes/missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, kv.Put(ctx, "codes/a", []byte("1")))
	val, err := kv.Get(ctx, "codes/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)

	require.NoError(t, kv.Put(ctx, "codes/a", []byte("2")))
	val, err = kv.Get(ctx, "codes/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), val)

	for i := 0; i < 7; i++ {
		require.NoError(t, kv.Put(ctx, fmt.Sprintf("deliveries/%02d", i), []byte{byte(i)}))
	}
	require.NoError(t, kv.Put(ctx, "runs/latest", []byte("{}")))

	var keys []string
	cursor := ""
	pages := 0
	for {
		page, err := kv.List(ctx, "deliveries/", cursor, 3)
		require.NoError(t, err)
		pages++
		for _, e := range page.Entries {
			keys = append(keys, e.Key)
		}
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}
	assert.Equal(t, 3, pages)
	assert.Equal(t, []string{
		"deliveries/00", "deliveries/01", "deliveries/02", "deliveries/03",
		"deliveries/04", "deliveries/05", "deliveries/06",
	}, keys)

	page, err := kv.List(ctx, "codes/", "", 0)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "codes/a", page.Entries[0].Key)
	assert.Empty(t, page.Cursor)

	require.NoError(t, kv.Delete(ctx, "codes/a"))
	_, err = kv.Get(ctx, "codes/a")
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, kv.Delete(ctx, "codes/a"))

	page, err = kv.List(ctx, "nothing/", "", 10)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
}

func TestMemoryKV_Contract(t *testing.T) {
	kvContract(t, NewMemoryKV())
}

func TestBadgerKV_Contract(t *testing.T) {
	kv, err := OpenBadger(InMemoryBadgerConfig(), &testutil.MockLogger{})
	require.NoError(t, err)
	defer kv.Close()

	kvContract(t, kv)
}

func TestBadgerKV_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultBadgerConfig(dir)
	cfg.GCInterval = 0

	kv, err := OpenBadger(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, kv.Put(context.Background(), "codes/x", []byte("v")))
	require.NoError(t, kv.Close())

	kv, err = OpenBadger(cfg, nil)
	require.NoError(t, err)
	defer kv.Close()
	val, err := kv.Get(context.Background(), "codes/x")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{}, nil)
	assert.Error(t, err)
}

func TestMemoryKV_ValuesAreCopied(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	in := []byte("abc")
	require.NoError(t, kv.Put(ctx, "k", in))
	in[0] = 'x'

	out, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), out)
}

func TestMemoryKV_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryKV().Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalk_StopsOnError(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	for i := 0; i < DefaultPageSize+5; i++ {
		require.NoError(t, kv.Put(ctx, fmt.Sprintf("codes/%04d", i), nil))
	}

	seen := 0
	require.NoError(t, Walk(ctx, kv, "codes/", func(Entry) error {
		seen++
		return nil
	}))
	assert.Equal(t, DefaultPageSize+5, seen)

	boom := errors.New("boom")
	err := Walk(ctx, kv, "codes/", func(Entry) error { return boom })
	assert.ErrorIs(t, err, boom)
}
