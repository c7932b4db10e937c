package testutil

import (
	"context"
	"shiftwatch/internal/models"
	"shiftwatch/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface and keeps tallies.
type MockMetrics struct {
	mu          sync.Mutex
	Runs        map[string]int
	CodesTotal  int
	NewCodes    int
	FetchErrors map[string]int // key: "source:class"
	Deliveries  map[string]int
	CacheHits   map[string]int // key: layer
	CacheMisses map[string]int
	Persisted   int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Runs:        map[string]int{},
		FetchErrors: map[string]int{},
		Deliveries:  map[string]int{},
		CacheHits:   map[string]int{},
		CacheMisses: map[string]int{},
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits(layer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits[layer]++
}
func (m *MockMetrics) IncCacheMisses(layer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses[layer]++
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}
func (m *MockMetrics) IncRuns(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs[outcome]++
}
func (m *MockMetrics) ObserveRunDuration(_ time.Duration) {}
func (m *MockMetrics) SetCodesTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CodesTotal = count
}
func (m *MockMetrics) AddNewCodes(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewCodes += count
}
func (m *MockMetrics) IncFetchErrors(source, class string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchErrors[source+":"+class]++
}
func (m *MockMetrics) IncDeliveries(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deliveries[outcome]++
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
}

// MockCompressor implements store.Compressor with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockDispatcher implements notify.DispatcherInterface.
type MockDispatcher struct {
	mu        sync.Mutex
	Calls     [][]models.CanonicalCode
	Outcome   models.DeliveryOutcome
	OutcomeFn func(models.CanonicalCode) models.DeliveryOutcome
}

func (m *MockDispatcher) Dispatch(_ context.Context, records []models.CanonicalCode) []models.DeliveryAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, records)

	out := make([]models.DeliveryAttempt, 0, len(records))
	for _, r := range records {
		outcome := m.Outcome
		if m.OutcomeFn != nil {
			outcome = m.OutcomeFn(r)
		}
		if outcome == "" {
			outcome = models.OutcomeSent
		}
		out = append(out, models.DeliveryAttempt{
			ID:          "attempt-" + r.Hash[:8],
			CodeHash:    r.Hash,
			Code:        r.Code,
			Outcome:     outcome,
			Destination: "mock",
			AttemptedAt: time.Now().UTC(),
			Attempts:    1,
		})
	}
	return out
}

// Dispatched returns every record passed to Dispatch, flattened.
func (m *MockDispatcher) Dispatched() []models.CanonicalCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CanonicalCode
	for _, c := range m.Calls {
		out = append(out, c...)
	}
	return out
}
