package clickhouse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lp-radar/internal/domain"
	"lp-radar/internal/observability"
	"lp-radar/internal/storage"
)

// defaultArchiveBatchSize is how many buffered events trigger a flush.
const defaultArchiveBatchSize = 256

// EventArchive implements storage.EventArchive using ClickHouse.
// Writes are buffered and batched; the ReplacingMergeTree engine
// absorbs replayed duplicates, so no duplicate checks happen here.
type EventArchive struct {
	conn      *Conn
	batchSize int

	mu     sync.Mutex
	buffer []*domain.LiquidityEvent
}

// NewEventArchive creates a new EventArchive. batchSize <= 0 selects
// the default.
func NewEventArchive(conn *Conn, batchSize int) *EventArchive {
	if batchSize <= 0 {
		batchSize = defaultArchiveBatchSize
	}
	return &EventArchive{
		conn:      conn,
		batchSize: batchSize,
	}
}

// Compile-time interface check.
var _ storage.EventArchive = (*EventArchive)(nil)

// Append buffers events and flushes once the batch size is reached.
func (a *EventArchive) Append(ctx context.Context, events []*domain.LiquidityEvent) error {
	if len(events) == 0 {
		return nil
	}

	a.mu.Lock()
	a.buffer = append(a.buffer, events...)
	var pending []*domain.LiquidityEvent
	if len(a.buffer) >= a.batchSize {
		pending = a.buffer
		a.buffer = nil
	}
	a.mu.Unlock()

	if pending == nil {
		return nil
	}
	return a.send(ctx, pending)
}

// Flush writes all buffered events.
func (a *EventArchive) Flush(ctx context.Context) error {
	a.mu.Lock()
	pending := a.buffer
	a.buffer = nil
	a.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	return a.send(ctx, pending)
}

// Buffered returns the current number of unflushed events.
func (a *EventArchive) Buffered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffer)
}

func (a *EventArchive) send(ctx context.Context, events []*domain.LiquidityEvent) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "archive_batch", time.Since(start).Seconds(), err)
	}()

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO event_archive (
			event_id, pool, base_mint, base_symbol, quote_symbol, kind,
			sol_delta, token_delta, spike_multiplier, new_pool,
			tx_signature, slot, observed_at, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare archive batch: %w", err)
	}

	for _, e := range events {
		var newPool uint8
		if e.NewPool {
			newPool = 1
		}
		err = batch.Append(
			e.EventID, e.Pool, e.BaseMint, e.BaseSymbol, e.QuoteSymbol, e.Kind,
			e.SolDelta, e.TokenDelta, e.SpikeMultiplier, newPool,
			e.TxSignature, uint64(e.Slot), uint64(e.ObservedAt), uint64(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append to archive batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send archive batch: %w", err)
	}
	return nil
}

// GetByPool retrieves archived events for a pool, ordered by
// observed_at ASC. Used by offline review tooling and tests.
func (a *EventArchive) GetByPool(ctx context.Context, pool string) ([]*domain.LiquidityEvent, error) {
	query := `
		SELECT event_id, pool, base_mint, base_symbol, quote_symbol, kind,
		       sol_delta, token_delta, spike_multiplier, new_pool,
		       tx_signature, slot, observed_at, created_at
		FROM event_archive FINAL
		WHERE pool = ?
		ORDER BY observed_at ASC
	`

	rows, err := a.conn.Query(ctx, query, pool)
	if err != nil {
		return nil, fmt.Errorf("query archive by pool: %w", err)
	}
	defer rows.Close()

	var events []*domain.LiquidityEvent
	for rows.Next() {
		var e domain.LiquidityEvent
		var newPool uint8
		var slot, observedAt, createdAt uint64

		err := rows.Scan(
			&e.EventID, &e.Pool, &e.BaseMint, &e.BaseSymbol, &e.QuoteSymbol, &e.Kind,
			&e.SolDelta, &e.TokenDelta, &e.SpikeMultiplier, &newPool,
			&e.TxSignature, &slot, &observedAt, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}

		e.NewPool = newPool == 1
		e.Slot = int64(slot)
		e.ObservedAt = int64(observedAt)
		e.CreatedAt = int64(createdAt)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive rows: %w", err)
	}
	return events, nil
}
