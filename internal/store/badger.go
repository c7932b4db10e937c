package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"shiftwatch/internal/providers"
)

type BadgerConfig struct {
	// Path is ignored when InMemory is set.
	Path           string
	InMemory       bool
	SyncWrites     bool
	GCInterval     time.Duration
	GCDiscardRatio float64
}

func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger routes badger's internal logging to the store log type.
type badgerLogger struct {
	logger providers.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(providers.TypeStore, strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(providers.TypeStore, strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(providers.TypeStore, strings.TrimSpace(format), args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(providers.TypeStore, strings.TrimSpace(format), args...)
}

type BadgerKV struct {
	db     *badger.DB
	logger providers.Logger
	stopGC chan struct{}
	gcDone chan struct{}
	once   sync.Once
}

func OpenBadger(cfg BadgerConfig, logger providers.Logger) (*BadgerKV, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	kv := &BadgerKV{db: db, logger: logger}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		kv.stopGC = make(chan struct{})
		kv.gcDone = make(chan struct{})
		go kv.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return kv, nil
}

func (b *BadgerKV) runGC(interval time.Duration, ratio float64) {
	defer close(b.gcDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopGC:
			return
		case <-ticker.C:
			err := b.db.RunValueLogGC(ratio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) && b.logger != nil {
				b.logger.Warnf(providers.TypeStore, "badger value log GC: %v", err)
			}
		}
	}
}

func (b *BadgerKV) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", key, err)
	}
	return val, nil
}

func (b *BadgerKV) Put(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger put %s: %w", key, err)
	}
	return nil
}

func (b *BadgerKV) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete %s: %w", key, err)
	}
	return nil
}

func (b *BadgerKV) List(ctx context.Context, prefix, cursor string, limit int) (Page, error) {
	limit = normalizeLimit(limit)
	start := startAfter(prefix, cursor)

	var page Page
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(start)); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := string(item.KeyCopy(nil))
			if cursor != "" && key == cursor {
				continue
			}
			if len(page.Entries) == limit {
				page.Cursor = page.Entries[len(page.Entries)-1].Key
				return nil
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			page.Entries = append(page.Entries, Entry{Key: key, Value: val})
		}
		return nil
	})
	if err != nil {
		return Page{}, fmt.Errorf("badger list %s: %w", prefix, err)
	}
	return page, nil
}

func (b *BadgerKV) Close() error {
	b.once.Do(func() {
		if b.stopGC != nil {
			close(b.stopGC)
			<-b.gcDone
		}
	})
	return b.db.Close()
}
