package memory

import (
	"context"
	"errors"
	"testing"

	"lp-radar/internal/domain"
	"lp-radar/internal/storage"
)

func TestLiquidityEventStore_InsertAndGet(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	event := &domain.LiquidityEvent{
		EventID:     "evt1",
		Pool:        "pool1",
		BaseMint:    "mint1",
		Kind:        domain.EventLPAdd,
		SolDelta:    450 * domain.LamportsPerSol,
		TokenDelta:  1_000_000,
		TxSignature: "sig1",
		Slot:        100,
		ObservedAt:  1704067200000,
		CreatedAt:   1704067200000,
	}

	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "evt1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Kind != domain.EventLPAdd {
		t.Errorf("Kind mismatch: got %s, want %s", got.Kind, domain.EventLPAdd)
	}
	if got.SolDelta != 450*domain.LamportsPerSol {
		t.Errorf("SolDelta mismatch: got %d", got.SolDelta)
	}
}

func TestLiquidityEventStore_DuplicateKey(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	event := &domain.LiquidityEvent{EventID: "evt1", Pool: "pool1", ObservedAt: 1000}

	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, event)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestLiquidityEventStore_GetByIDNotFound(t *testing.T) {
	store := NewLiquidityEventStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLiquidityEventStore_GetByPoolOrdered(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	events := []*domain.LiquidityEvent{
		{EventID: "e3", Pool: "pool1", ObservedAt: 3000, Slot: 300},
		{EventID: "e1", Pool: "pool1", ObservedAt: 1000, Slot: 100},
		{EventID: "e2", Pool: "pool1", ObservedAt: 2000, Slot: 200},
		{EventID: "e4", Pool: "pool2", ObservedAt: 1500, Slot: 150},
	}
	for _, e := range events {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByPool(ctx, "pool1")
	if err != nil {
		t.Fatalf("GetByPool failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(result))
	}
	for i := 1; i < len(result); i++ {
		if result[i].ObservedAt < result[i-1].ObservedAt {
			t.Errorf("Results not ordered: %d < %d", result[i].ObservedAt, result[i-1].ObservedAt)
		}
	}
}

func TestLiquidityEventStore_GetByTimeRange(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	events := []*domain.LiquidityEvent{
		{EventID: "e1", Pool: "pool1", ObservedAt: 1000},
		{EventID: "e2", Pool: "pool1", ObservedAt: 2000},
		{EventID: "e3", Pool: "pool1", ObservedAt: 3000},
		{EventID: "e4", Pool: "pool2", ObservedAt: 2500},
	}
	for _, e := range events {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByTimeRange(ctx, "pool1", 1500, 2500)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 event in range, got %d", len(result))
	}
	if result[0].ObservedAt != 2000 {
		t.Errorf("Expected observed_at 2000, got %d", result[0].ObservedAt)
	}

	// Boundaries are inclusive on both ends.
	result, _ = store.GetByTimeRange(ctx, "pool1", 1000, 3000)
	if len(result) != 3 {
		t.Errorf("Expected 3 events inclusive, got %d", len(result))
	}
}

func TestLiquidityEventStore_InvalidInput(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.LiquidityEvent{EventID: ""}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty EventID, got %v", err)
	}
	if err := store.Insert(ctx, &domain.LiquidityEvent{EventID: "e1"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty Pool, got %v", err)
	}
}

func TestLiquidityEventStore_CopyOnRead(t *testing.T) {
	store := NewLiquidityEventStore()
	ctx := context.Background()

	event := &domain.LiquidityEvent{EventID: "e1", Pool: "pool1", ObservedAt: 1000}
	if err := store.Insert(ctx, event); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, _ := store.GetByID(ctx, "e1")
	got.Pool = "mutated"

	again, _ := store.GetByID(ctx, "e1")
	if again.Pool != "pool1" {
		t.Errorf("Store leaked internal state: pool = %s", again.Pool)
	}
}
