package memory

import (
	"context"
	"sort"
	"sync"

	"lp-radar/internal/domain"
	"lp-radar/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Alert // keyed by AlertID
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{
		data: make(map[string]*domain.Alert),
	}
}

// Insert adds a new alert. Returns ErrDuplicateKey if alert_id exists.
func (s *AlertStore) Insert(_ context.Context, a *domain.Alert) error {
	if a == nil || a.AlertID == "" || a.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.AlertID]; exists {
		return storage.ErrDuplicateKey
	}

	alertCopy := *a
	s.data[a.AlertID] = &alertCopy
	return nil
}

// GetByID retrieves an alert by its ID. Returns ErrNotFound if not exists.
func (s *AlertStore) GetByID(_ context.Context, alertID string) (*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[alertID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	alertCopy := *a
	return &alertCopy, nil
}

// GetByPool retrieves all alerts for a pool, ordered by created_at ASC.
func (s *AlertStore) GetByPool(_ context.Context, pool string) ([]*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Alert
	for _, a := range s.data {
		if a.Pool == pool {
			alertCopy := *a
			result = append(result, &alertCopy)
		}
	}

	sortAlerts(result)
	return result, nil
}

// GetByTimeRange retrieves alerts created within [start, end] (inclusive).
func (s *AlertStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Alert
	for _, a := range s.data {
		if a.CreatedAt >= start && a.CreatedAt <= end {
			alertCopy := *a
			result = append(result, &alertCopy)
		}
	}

	sortAlerts(result)
	return result, nil
}

func sortAlerts(alerts []*domain.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].CreatedAt != alerts[j].CreatedAt {
			return alerts[i].CreatedAt < alerts[j].CreatedAt
		}
		return alerts[i].AlertID < alerts[j].AlertID
	})
}

var _ storage.AlertStore = (*AlertStore)(nil)
