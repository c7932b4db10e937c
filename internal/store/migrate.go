package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"shiftwatch/internal/canonical"
	"shiftwatch/internal/merge"
	"shiftwatch/internal/models"
	"shiftwatch/internal/providers"
)

type Migration struct {
	Name  string
	Apply func(ctx context.Context, kv KV) error
}

// Migrator applies each named migration at most once. Completion is
// recorded as a marker under meta/migrations/<name>.
type Migrator struct {
	kv         KV
	logger     providers.Logger
	migrations []Migration
	now        func() time.Time
}

func NewMigrator(kv KV, logger providers.Logger, migrations ...Migration) *Migrator {
	return &Migrator{kv: kv, logger: logger, migrations: migrations, now: time.Now}
}

type marker struct {
	AppliedAt time.Time `json:"applied_at"`
}

// Run applies pending migrations in order and returns the names applied.
func (m *Migrator) Run(ctx context.Context) ([]string, error) {
	var applied []string
	for _, mig := range m.migrations {
		key := MigrationPrefix + mig.Name
		_, err := m.kv.Get(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return applied, fmt.Errorf("migration %s: %w", mig.Name, err)
		}

		m.logger.Infof(providers.TypeStore, "Applying migration %s", mig.Name)
		if err := mig.Apply(ctx, m.kv); err != nil {
			return applied, fmt.Errorf("migration %s: %w", mig.Name, err)
		}
		raw, err := json.Marshal(marker{AppliedAt: m.now().UTC()})
		if err != nil {
			return applied, err
		}
		if err := m.kv.Put(ctx, key, raw); err != nil {
			return applied, fmt.Errorf("migration %s: write marker: %w", mig.Name, err)
		}
		applied = append(applied, mig.Name)
	}
	return applied, nil
}

const RekeyLegacyCodes = "rekey-legacy-codes"

type legacyRecord struct {
	models.CollectedDraft
	Source string `json:"source"`
}

// RekeyLegacyCodesMigration moves records stored under legacy/code/<text>
// to codes/<hash>, merging with anything already stored there. Records
// whose code text does not normalize are dropped.
func RekeyLegacyCodesMigration(canon *canonical.Canonicalizer, logger providers.Logger, now func() time.Time) Migration {
	return Migration{
		Name: RekeyLegacyCodes,
		Apply: func(ctx context.Context, kv KV) error {
			var keys []string
			err := Walk(ctx, kv, LegacyCodePrefix, func(e Entry) error {
				keys = append(keys, e.Key)
				return nil
			})
			if err != nil {
				return err
			}

			repo := NewRepository(kv, logger, providers.NewNoopMetrics())
			at := now().UTC()
			moved := 0
			for _, key := range keys {
				raw, err := kv.Get(ctx, key)
				if err != nil {
					return err
				}
				var legacy legacyRecord
				if err := json.Unmarshal(raw, &legacy); err != nil {
					logger.Warnf(providers.TypeStore, "Dropping undecodable legacy record %s: %v", key, err)
					if err := kv.Delete(ctx, key); err != nil {
						return err
					}
					continue
				}
				if legacy.Code == "" {
					legacy.Code = strings.TrimPrefix(key, LegacyCodePrefix)
				}
				source := legacy.Source
				if source == "" {
					source = "legacy"
				}

				rec, ok := canon.Canonicalize(legacy.CollectedDraft, source, at)
				if ok {
					existing, err := repo.LoadCode(ctx, rec.Hash)
					if err != nil {
						return err
					}
					res := merge.Merge(existing, rec, at)
					// Legacy records predate notification tracking and
					// were already announced.
					if res.Inserted {
						res.Record = merge.WithNotified(res.Record, at)
					}
					if err := repo.SaveCode(ctx, res.Record); err != nil {
						return err
					}
					moved++
				} else {
					logger.Warnf(providers.TypeStore, "Dropping legacy record with invalid code %q", legacy.Code)
				}
				if err := kv.Delete(ctx, key); err != nil {
					return err
				}
			}
			logger.Infof(providers.TypeStore, "Rekeyed %d of %d legacy records", moved, len(keys))
			return nil
		},
	}
}
