package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeAlertID computes a deterministic alert_id using SHA256.
// Formula: SHA256(event_id|observed_at)
// Returns hex-encoded hash (64 characters).
//
// observedAt is block time, not wall clock, so a replay of the same
// notification stream yields byte-identical alert records.
func ComputeAlertID(eventID string, observedAt int64) string {
	data := fmt.Sprintf("%s|%d", eventID, observedAt)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
