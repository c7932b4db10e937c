package store

import (
	"fmt"
	"path/filepath"
	"time"

	"shiftwatch/internal/canonical"
	"shiftwatch/internal/providers"
	"shiftwatch/internal/structures"
)

const (
	DriverBadger = "badger"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// NewKVProvider opens the configured backend behind the shared read cache.
// The returned cleanup flushes and closes it.
func NewKVProvider(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, cache providers.CacheProviderInterface) (KV, func(), error) {
	var backend KV
	switch conf.Store.Driver {
	case DriverBadger:
		kv, err := OpenBadger(DefaultBadgerConfig(conf.Store.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		backend = kv
	case DriverFile:
		compressor, err := NewZstdCompressor()
		if err != nil {
			return nil, nil, err
		}
		kv, err := OpenFile(filepath.Clean(conf.Store.Path), compressor, logger, metrics)
		if err != nil {
			compressor.Close()
			return nil, nil, fmt.Errorf("open snapshot %s: %w", conf.Store.Path, err)
		}
		backend = kv
	case DriverMemory, "":
		backend = NewMemoryKV()
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}

	logger.Infof(providers.TypeStore, "Store opened: driver=%s path=%s", conf.Store.Driver, conf.Store.Path)
	kv := NewCachedKV(backend, cache)
	cleanup := func() {
		if err := kv.Close(); err != nil {
			logger.Errorf(providers.TypeStore, "Error while closing store: %s", err)
		}
	}
	return kv, cleanup, nil
}

func NewRepositoryProvider(kv KV, logger providers.Logger, metrics providers.MetricsProviderInterface) RepositoryInterface {
	return NewRepository(kv, logger, metrics)
}

// NewMigratorProvider registers the built-in migrations.
func NewMigratorProvider(conf *structures.Config, kv KV, logger providers.Logger) *Migrator {
	canon := canonical.NewCanonicalizer(conf.Monitor.Title)
	return NewMigrator(kv, logger, RekeyLegacyCodesMigration(canon, logger, time.Now))
}
