package memory

import (
	"context"
	"sort"
	"sync"

	"lp-radar/internal/domain"
	"lp-radar/internal/storage"
)

// LiquidityEventStore is an in-memory implementation of storage.LiquidityEventStore.
type LiquidityEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.LiquidityEvent // keyed by EventID
}

// NewLiquidityEventStore creates a new in-memory liquidity event store.
func NewLiquidityEventStore() *LiquidityEventStore {
	return &LiquidityEventStore{
		data: make(map[string]*domain.LiquidityEvent),
	}
}

// Insert adds a new liquidity event. Returns ErrDuplicateKey if event_id exists.
func (s *LiquidityEventStore) Insert(_ context.Context, e *domain.LiquidityEvent) error {
	if e == nil || e.EventID == "" || e.Pool == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	eventCopy := *e
	s.data[e.EventID] = &eventCopy
	return nil
}

// GetByID retrieves an event by its ID. Returns ErrNotFound if not exists.
func (s *LiquidityEventStore) GetByID(_ context.Context, eventID string) (*domain.LiquidityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[eventID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	eventCopy := *e
	return &eventCopy, nil
}

// GetByPool retrieves all events for a pool, ordered by observed_at ASC.
func (s *LiquidityEventStore) GetByPool(_ context.Context, pool string) ([]*domain.LiquidityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquidityEvent
	for _, e := range s.data {
		if e.Pool == pool {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sortEvents(result)
	return result, nil
}

// GetByTimeRange retrieves events for a pool within [start, end] (inclusive).
func (s *LiquidityEventStore) GetByTimeRange(_ context.Context, pool string, start, end int64) ([]*domain.LiquidityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquidityEvent
	for _, e := range s.data {
		if e.Pool == pool && e.ObservedAt >= start && e.ObservedAt <= end {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sortEvents(result)
	return result, nil
}

func sortEvents(events []*domain.LiquidityEvent) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].ObservedAt != events[j].ObservedAt {
			return events[i].ObservedAt < events[j].ObservedAt
		}
		return events[i].Slot < events[j].Slot
	})
}

var _ storage.LiquidityEventStore = (*LiquidityEventStore)(nil)
