package idhash

import (
	"testing"
)

func TestComputeAlertID_Determinism(t *testing.T) {
	eventID := ComputeEventID("sig", "pool", "lp_add")
	observedAt := int64(1704067234567)

	// Compute multiple times
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		results[i] = ComputeAlertID(eventID, observedAt)
	}

	// All should be identical
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Errorf("Determinism failed: results[%d]=%s != results[0]=%s", i, results[i], results[0])
		}
	}

	if len(results[0]) != 64 {
		t.Errorf("ComputeAlertID() length = %d, want 64", len(results[0]))
	}
}

func TestComputeAlertID_DifferentInputs(t *testing.T) {
	base := ComputeAlertID("event123", 1000)

	if base == ComputeAlertID("event456", 1000) {
		t.Error("Different event should produce different hash")
	}
	if base == ComputeAlertID("event123", 2000) {
		t.Error("Different observed time should produce different hash")
	}
}
