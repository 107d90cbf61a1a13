package storage

import (
	"context"

	"lp-radar/internal/domain"
)

// LiquidityEventStore provides access to liquidity_events storage.
// The store is append-only: events are never updated or deleted.
type LiquidityEventStore interface {
	// Insert adds a new liquidity event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.LiquidityEvent) error

	// GetByID retrieves an event by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, eventID string) (*domain.LiquidityEvent, error)

	// GetByPool retrieves all events for a pool, ordered by observed_at ASC.
	GetByPool(ctx context.Context, pool string) ([]*domain.LiquidityEvent, error)

	// GetByTimeRange retrieves events for a pool within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, pool string, start, end int64) ([]*domain.LiquidityEvent, error)
}

// AlertStore provides access to alerts storage.
// The store is append-only: alerts are never updated or deleted.
type AlertStore interface {
	// Insert adds a new alert. Returns ErrDuplicateKey if alert_id exists.
	Insert(ctx context.Context, a *domain.Alert) error

	// GetByID retrieves an alert by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, alertID string) (*domain.Alert, error)

	// GetByPool retrieves all alerts for a pool, ordered by created_at ASC.
	GetByPool(ctx context.Context, pool string) ([]*domain.Alert, error)

	// GetByTimeRange retrieves alerts created within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Alert, error)
}

// EventArchive is a write-only analytics sink for liquidity events.
// Unlike the primary stores it tolerates duplicates and batches writes;
// offline review tooling reads it.
type EventArchive interface {
	// Append buffers events for archival. May flush as a side effect.
	Append(ctx context.Context, events []*domain.LiquidityEvent) error

	// Flush writes all buffered events.
	Flush(ctx context.Context) error
}
