package memory

import (
	"context"
	"errors"
	"testing"

	"lp-radar/internal/domain"
	"lp-radar/internal/storage"
)

func TestAlertStore_InsertAndGet(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	alert := &domain.Alert{
		AlertID:   "a1",
		EventID:   "evt1",
		Pool:      "pool1",
		Pair:      "NEW/SOL",
		Kind:      domain.EventLPAdd,
		Magnitude: 450,
		Passed:    true,
		Priority:  domain.PriorityHigh,
		CreatedAt: 1704067200000,
	}

	if err := store.Insert(ctx, alert); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Pair != "NEW/SOL" || !got.Passed {
		t.Errorf("Alert mismatch: %+v", got)
	}
}

func TestAlertStore_DuplicateKey(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	alert := &domain.Alert{AlertID: "a1", EventID: "evt1", CreatedAt: 1000}

	if err := store.Insert(ctx, alert); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, alert); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestAlertStore_GetByIDNotFound(t *testing.T) {
	store := NewAlertStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAlertStore_GetByPoolOrdered(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	alerts := []*domain.Alert{
		{AlertID: "a3", EventID: "e3", Pool: "pool1", CreatedAt: 3000},
		{AlertID: "a1", EventID: "e1", Pool: "pool1", CreatedAt: 1000},
		{AlertID: "a2", EventID: "e2", Pool: "pool2", CreatedAt: 2000},
	}
	for _, a := range alerts {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByPool(ctx, "pool1")
	if err != nil {
		t.Fatalf("GetByPool failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(result))
	}
	if result[0].CreatedAt != 1000 || result[1].CreatedAt != 3000 {
		t.Errorf("Results not ordered: %d, %d", result[0].CreatedAt, result[1].CreatedAt)
	}
}

func TestAlertStore_GetByTimeRange(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	alerts := []*domain.Alert{
		{AlertID: "a1", EventID: "e1", Pool: "pool1", CreatedAt: 1000},
		{AlertID: "a2", EventID: "e2", Pool: "pool2", CreatedAt: 2000},
		{AlertID: "a3", EventID: "e3", Pool: "pool3", CreatedAt: 3000},
	}
	for _, a := range alerts {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByTimeRange(ctx, 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 alerts inclusive, got %d", len(result))
	}
}

func TestAlertStore_InvalidInput(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Alert{AlertID: "a1"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty EventID, got %v", err)
	}
}
