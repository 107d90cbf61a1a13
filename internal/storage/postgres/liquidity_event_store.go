package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lp-radar/internal/domain"
	"lp-radar/internal/observability"
	"lp-radar/internal/storage"
)

// LiquidityEventStore implements storage.LiquidityEventStore using PostgreSQL.
type LiquidityEventStore struct {
	pool *Pool
}

// NewLiquidityEventStore creates a new LiquidityEventStore.
func NewLiquidityEventStore(pool *Pool) *LiquidityEventStore {
	return &LiquidityEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LiquidityEventStore = (*LiquidityEventStore)(nil)

const liquidityEventColumns = `
	event_id, pool, base_mint, base_symbol, quote_symbol, kind,
	sol_delta, token_delta, spike_multiplier, new_pool,
	tx_signature, slot, observed_at, created_at
`

// Insert adds a new liquidity event. Returns ErrDuplicateKey if event_id exists.
func (s *LiquidityEventStore) Insert(ctx context.Context, e *domain.LiquidityEvent) error {
	if e == nil || e.EventID == "" || e.Pool == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO liquidity_events (` + liquidityEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		e.EventID,
		e.Pool,
		e.BaseMint,
		e.BaseSymbol,
		e.QuoteSymbol,
		e.Kind,
		e.SolDelta,
		e.TokenDelta,
		e.SpikeMultiplier,
		e.NewPool,
		e.TxSignature,
		e.Slot,
		e.ObservedAt,
		e.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			// Replay duplicates are an expected outcome, not a query error.
			observability.RecordDBQuery("postgres", "insert_event", time.Since(start).Seconds(), nil)
			return storage.ErrDuplicateKey
		}
		observability.RecordDBQuery("postgres", "insert_event", time.Since(start).Seconds(), err)
		return fmt.Errorf("insert liquidity event: %w", err)
	}
	observability.RecordDBQuery("postgres", "insert_event", time.Since(start).Seconds(), nil)
	return nil
}

// GetByID retrieves an event by its ID. Returns ErrNotFound if not exists.
func (s *LiquidityEventStore) GetByID(ctx context.Context, eventID string) (*domain.LiquidityEvent, error) {
	query := `
		SELECT ` + liquidityEventColumns + `
		FROM liquidity_events
		WHERE event_id = $1
	`

	row := s.pool.QueryRow(ctx, query, eventID)
	e, err := scanLiquidityEvent(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get liquidity event by id: %w", err)
	}
	return e, nil
}

// GetByPool retrieves all events for a pool, ordered by observed_at ASC.
func (s *LiquidityEventStore) GetByPool(ctx context.Context, pool string) ([]*domain.LiquidityEvent, error) {
	query := `
		SELECT ` + liquidityEventColumns + `
		FROM liquidity_events
		WHERE pool = $1
		ORDER BY observed_at ASC, slot ASC
	`

	rows, err := s.pool.Query(ctx, query, pool)
	if err != nil {
		return nil, fmt.Errorf("get liquidity events by pool: %w", err)
	}
	defer rows.Close()

	return scanLiquidityEvents(rows)
}

// GetByTimeRange retrieves events for a pool within [start, end] (inclusive).
func (s *LiquidityEventStore) GetByTimeRange(ctx context.Context, pool string, start, end int64) ([]*domain.LiquidityEvent, error) {
	query := `
		SELECT ` + liquidityEventColumns + `
		FROM liquidity_events
		WHERE pool = $1 AND observed_at >= $2 AND observed_at <= $3
		ORDER BY observed_at ASC, slot ASC
	`

	rows, err := s.pool.Query(ctx, query, pool, start, end)
	if err != nil {
		return nil, fmt.Errorf("get liquidity events by time range: %w", err)
	}
	defer rows.Close()

	return scanLiquidityEvents(rows)
}

func scanLiquidityEvent(row pgx.Row) (*domain.LiquidityEvent, error) {
	var e domain.LiquidityEvent
	err := row.Scan(
		&e.EventID,
		&e.Pool,
		&e.BaseMint,
		&e.BaseSymbol,
		&e.QuoteSymbol,
		&e.Kind,
		&e.SolDelta,
		&e.TokenDelta,
		&e.SpikeMultiplier,
		&e.NewPool,
		&e.TxSignature,
		&e.Slot,
		&e.ObservedAt,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// scanLiquidityEvents scans multiple rows into a slice of LiquidityEvent.
func scanLiquidityEvents(rows pgx.Rows) ([]*domain.LiquidityEvent, error) {
	var events []*domain.LiquidityEvent

	for rows.Next() {
		e, err := scanLiquidityEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan liquidity event row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liquidity event rows: %w", err)
	}

	return events, nil
}
