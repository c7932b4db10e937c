package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"shiftwatch/internal/models"
	"shiftwatch/internal/providers"
)

const (
	CodePrefix       = "codes/"
	DeliveryPrefix   = "deliveries/"
	RunLatestKey     = "runs/latest"
	MigrationPrefix  = "meta/migrations/"
	LegacyCodePrefix = "legacy/code/"
)

var ErrUnreadableSnapshot = errors.New("unreadable snapshot")

func CodeKey(hash string) string {
	return CodePrefix + hash
}

// DeliveryKey orders attempts by time; the attempt ID breaks ties.
func DeliveryKey(a models.DeliveryAttempt) string {
	return fmt.Sprintf("%s%020d-%s", DeliveryPrefix, a.AttemptedAt.UnixNano(), a.ID)
}

type RepositoryInterface interface {
	LoadCode(ctx context.Context, hash string) (*models.CanonicalCode, error)
	SaveCode(ctx context.Context, rec models.CanonicalCode) error
	ListCodes(ctx context.Context) ([]models.CanonicalCode, error)
	CountCodes(ctx context.Context) (int, error)
	AppendDelivery(ctx context.Context, attempt models.DeliveryAttempt) error
	ListDeliveries(ctx context.Context, limit int) ([]models.DeliveryAttempt, error)
	SaveRunSummary(ctx context.Context, summary models.RunSummary) error
	LoadLatestRunSummary(ctx context.Context) (*models.RunSummary, error)
	Flush() error
}

type Repository struct {
	kv      KV
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewRepository(kv KV, logger providers.Logger, metrics providers.MetricsProviderInterface) *Repository {
	return &Repository{kv: kv, logger: logger, metrics: metrics}
}

// LoadCode returns nil without error when no record exists for hash.
func (r *Repository) LoadCode(ctx context.Context, hash string) (*models.CanonicalCode, error) {
	raw, err := r.kv.Get(ctx, CodeKey(hash))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load code %s: %w", hash, err)
	}
	var rec models.CanonicalCode
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode code %s: %w", hash, err)
	}
	return &rec, nil
}

func (r *Repository) SaveCode(ctx context.Context, rec models.CanonicalCode) error {
	if rec.Hash == "" {
		return errors.New("save code: empty hash")
	}
	start := time.Now()
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode code %s: %w", rec.Hash, err)
	}
	if err := r.kv.Put(ctx, CodeKey(rec.Hash), raw); err != nil {
		return fmt.Errorf("save code %s: %w", rec.Hash, err)
	}
	r.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func (r *Repository) ListCodes(ctx context.Context) ([]models.CanonicalCode, error) {
	var out []models.CanonicalCode
	err := Walk(ctx, r.kv, CodePrefix, func(e Entry) error {
		var rec models.CanonicalCode
		if err := json.Unmarshal(e.Value, &rec); err != nil {
			r.logger.Warnf(providers.TypeStore, "Skipping undecodable record %s: %v", e.Key, err)
			return nil
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	return out, nil
}

func (r *Repository) CountCodes(ctx context.Context) (int, error) {
	n := 0
	err := Walk(ctx, r.kv, CodePrefix, func(Entry) error {
		n++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count codes: %w", err)
	}
	return n, nil
}

func (r *Repository) AppendDelivery(ctx context.Context, attempt models.DeliveryAttempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("encode delivery %s: %w", attempt.ID, err)
	}
	if err := r.kv.Put(ctx, DeliveryKey(attempt), raw); err != nil {
		return fmt.Errorf("append delivery %s: %w", attempt.ID, err)
	}
	return nil
}

// ListDeliveries returns attempts oldest first. A positive limit keeps only
// the most recent limit attempts.
func (r *Repository) ListDeliveries(ctx context.Context, limit int) ([]models.DeliveryAttempt, error) {
	var out []models.DeliveryAttempt
	err := Walk(ctx, r.kv, DeliveryPrefix, func(e Entry) error {
		var a models.DeliveryAttempt
		if err := json.Unmarshal(e.Value, &a); err != nil {
			r.logger.Warnf(providers.TypeStore, "Skipping undecodable delivery %s: %v", e.Key, err)
			return nil
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *Repository) SaveRunSummary(ctx context.Context, summary models.RunSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	if err := r.kv.Put(ctx, RunLatestKey, raw); err != nil {
		return fmt.Errorf("save run summary: %w", err)
	}
	return nil
}

// LoadLatestRunSummary returns nil without error before the first run.
func (r *Repository) LoadLatestRunSummary(ctx context.Context) (*models.RunSummary, error) {
	raw, err := r.kv.Get(ctx, RunLatestKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load run summary: %w", err)
	}
	var summary models.RunSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("decode run summary: %w", err)
	}
	return &summary, nil
}

func (r *Repository) Flush() error {
	if f, ok := r.kv.(Flusher); ok {
		return f.Flush()
	}
	return nil
}
