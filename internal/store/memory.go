package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fairwatch/internal/model"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]model.FairnessSnapshot
	bySystem  map[string][]string // system -> snapshot IDs in append order
	history   map[string][]model.MetricPoint
	keys      *keyedMutex
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]model.FairnessSnapshot),
		bySystem:  make(map[string][]string),
		history:   make(map[string][]model.MetricPoint),
		keys:      newKeyedMutex(),
	}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }

func (s *MemoryStore) AppendSnapshot(_ context.Context, snap *model.FairnessSnapshot) error {
	// The caller's snapshot stays untouched; a missing ID is generated
	// into the stored copy only.
	stored := *snap
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.snapshots[stored.ID]; exists {
		return eris.Errorf("memory: snapshot %s already exists", stored.ID)
	}
	s.snapshots[stored.ID] = stored
	s.bySystem[stored.System] = append(s.bySystem[stored.System], stored.ID)
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, id string) (*model.FairnessSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return nil, eris.Errorf("memory: snapshot %s not found", id)
	}
	return &snap, nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context, system string, limit int) ([]model.FairnessSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.bySystem[system]
	out := make([]model.FairnessSnapshot, 0, len(ids))
	// Most recent first.
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, s.snapshots[ids[i]])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) AppendMetricValue(_ context.Context, system, metric string, ts time.Time, value float64) error {
	unlock := s.keys.Lock(historyKey(system, metric))
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	key := historyKey(system, metric)
	series := s.history[key]
	if n := len(series); n > 0 && ts.Before(series[n-1].Timestamp) {
		return eris.Errorf("memory: append out of order for %s/%s", system, metric)
	}
	s.history[key] = append(series, model.MetricPoint{Timestamp: ts, Value: value})
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, system, metric string, window int) ([]model.MetricPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series := s.history[historyKey(system, metric)]
	if window > 0 && len(series) > window {
		series = series[len(series)-window:]
	}
	// Copy so callers observe a consistent snapshot.
	out := make([]model.MetricPoint, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
