package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PubkeyLen is the byte length of a Solana public key.
const PubkeyLen = 32

// DecodePubkey decodes a base58 public key into its 32-byte form.
func DecodePubkey(s string) ([]byte, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode pubkey %q: %w", s, err)
	}
	if len(raw) != PubkeyLen {
		return nil, fmt.Errorf("pubkey %q: expected %d bytes, got %d", s, PubkeyLen, len(raw))
	}
	return raw, nil
}

// IsValidPubkey reports whether s is a well-formed base58 32-byte key.
func IsValidPubkey(s string) bool {
	_, err := DecodePubkey(s)
	return err == nil
}

// IsOnCurve reports whether the public key lies on the ed25519 curve.
// Program-derived addresses (vaults, pool authorities) are off-curve;
// wallet keys are on-curve. Returns false for malformed keys.
func IsOnCurve(s string) bool {
	raw, err := DecodePubkey(s)
	if err != nil {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
