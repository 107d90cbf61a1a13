package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lp-radar/internal/domain"
	"lp-radar/internal/storage"
)

func testEvent(eventID, pool string, observedAt int64) *domain.LiquidityEvent {
	return &domain.LiquidityEvent{
		EventID:     eventID,
		Pool:        pool,
		BaseMint:    "So11111111111111111111111111111111111111112",
		BaseSymbol:  "NEW",
		QuoteSymbol: "SOL",
		Kind:        domain.EventLPAdd,
		SolDelta:    450 * domain.LamportsPerSol,
		TokenDelta:  1_000_000,
		NewPool:     true,
		TxSignature: "sig-" + eventID,
		Slot:        250_000_000,
		ObservedAt:  observedAt,
		CreatedAt:   observedAt,
	}
}

func TestLiquidityEventStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLiquidityEventStore(pool)
	ctx := context.Background()

	event := testEvent("evt-1", "pool-a", 1_717_000_000_000)
	require.NoError(t, store.Insert(ctx, event))

	got, err := store.GetByID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, event, got)
}

func TestLiquidityEventStore_DuplicateInsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLiquidityEventStore(pool)
	ctx := context.Background()

	event := testEvent("evt-dup", "pool-a", 1_717_000_000_000)
	require.NoError(t, store.Insert(ctx, event))

	err := store.Insert(ctx, event)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestLiquidityEventStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLiquidityEventStore(pool)

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLiquidityEventStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLiquidityEventStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.LiquidityEvent{Pool: "pool-a"}), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.LiquidityEvent{EventID: "evt-x"}), storage.ErrInvalidInput)
}

func TestLiquidityEventStore_GetByPoolOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLiquidityEventStore(pool)
	ctx := context.Background()

	// Inserted out of order, returned by observed_at ASC.
	require.NoError(t, store.Insert(ctx, testEvent("evt-3", "pool-a", 3000)))
	require.NoError(t, store.Insert(ctx, testEvent("evt-1", "pool-a", 1000)))
	require.NoError(t, store.Insert(ctx, testEvent("evt-2", "pool-a", 2000)))
	require.NoError(t, store.Insert(ctx, testEvent("evt-other", "pool-b", 1500)))

	events, err := store.GetByPool(ctx, "pool-a")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "evt-1", events[0].EventID)
	assert.Equal(t, "evt-2", events[1].EventID)
	assert.Equal(t, "evt-3", events[2].EventID)
}

func TestLiquidityEventStore_GetByPoolEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLiquidityEventStore(pool)

	events, err := store.GetByPool(context.Background(), "no-such-pool")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLiquidityEventStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewLiquidityEventStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testEvent("evt-1", "pool-a", 1000)))
	require.NoError(t, store.Insert(ctx, testEvent("evt-2", "pool-a", 2000)))
	require.NoError(t, store.Insert(ctx, testEvent("evt-3", "pool-a", 3000)))

	// Bounds are inclusive.
	events, err := store.GetByTimeRange(ctx, "pool-a", 1000, 2000)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "evt-1", events[0].EventID)
	assert.Equal(t, "evt-2", events[1].EventID)

	events, err = store.GetByTimeRange(ctx, "pool-a", 2001, 2999)
	require.NoError(t, err)
	assert.Empty(t, events)
}
