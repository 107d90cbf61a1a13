package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeEventID computes a deterministic event_id using SHA256.
// Formula: SHA256(tx_signature|pool|kind)
// Returns hex-encoded hash (64 characters).
//
// A transaction produces at most one event per (pool, kind), so this key
// makes replayed notifications collapse onto the same stored row.
func ComputeEventID(txSignature, pool, kind string) string {
	data := fmt.Sprintf("%s|%s|%s", txSignature, pool, kind)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
