package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"shiftwatch/internal/providers"
)

const snapshotVersion = 1

type snapshot struct {
	Version int               `json:"version"`
	Entries map[string][]byte `json:"entries"`
}

// FileKV keeps every entry in memory and persists a zstd-compressed JSON
// snapshot on Flush and Close.
type FileKV struct {
	*MemoryKV
	path       string
	compressor Compressor
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	dirty      atomic.Bool
}

func OpenFile(path string, compressor Compressor, logger providers.Logger, metrics providers.MetricsProviderInterface) (*FileKV, error) {
	f := &FileKV{
		MemoryKV:   NewMemoryKV(),
		path:       path,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FileKV) Put(ctx context.Context, key string, value []byte) error {
	if err := f.MemoryKV.Put(ctx, key, value); err != nil {
		return err
	}
	f.dirty.Store(true)
	return nil
}

func (f *FileKV) Delete(ctx context.Context, key string) error {
	if err := f.MemoryKV.Delete(ctx, key); err != nil {
		return err
	}
	f.dirty.Store(true)
	return nil
}

// Flush writes the snapshot when anything changed since the last flush.
func (f *FileKV) Flush() error {
	if !f.dirty.CompareAndSwap(true, false) {
		return nil
	}
	if err := f.save(); err != nil {
		f.dirty.Store(true)
		return err
	}
	return nil
}

func (f *FileKV) Close() error {
	err := f.Flush()
	f.compressor.Close()
	return err
}

func (f *FileKV) save() error {
	start := time.Now()
	jsonData, err := json.Marshal(snapshot{Version: snapshotVersion, Entries: f.snapshot()})
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}

	tmpFile := f.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}
	if err = os.Rename(tmpFile, f.path); err != nil {
		return err
	}

	f.metrics.ObservePersistenceDuration(time.Since(start))
	f.logger.Debugf(providers.TypeStore, "Snapshot written to %s (%d bytes)", f.path, len(data))
	return nil
}

func (f *FileKV) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(decompressed, &snap); err == nil && snap.Version >= snapshotVersion && snap.Entries != nil {
		f.replace(snap.Entries)
		return nil
	}

	// Pre-KV snapshots held a single map of code text to record. Those
	// records are parked under the legacy prefix for the rekey migration.
	f.logger.Warnf(providers.TypeStore, "Snapshot %s is in the legacy format, staging records for migration", f.path)
	var legacy struct {
		Codes map[string]json.RawMessage `json:"codes"`
	}
	if err := json.Unmarshal(decompressed, &legacy); err != nil || legacy.Codes == nil {
		f.logger.Warnf(providers.TypeStore, "Migration failed")
		if err == nil {
			err = ErrUnreadableSnapshot
		}
		return err
	}
	entries := make(map[string][]byte, len(legacy.Codes))
	for code, raw := range legacy.Codes {
		entries[LegacyCodePrefix+code] = raw
	}
	f.replace(entries)
	f.dirty.Store(true)
	f.logger.Warnf(providers.TypeStore, "Staged %d legacy records", len(entries))
	return nil
}
