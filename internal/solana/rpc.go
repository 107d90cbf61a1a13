package solana

import "context"

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetTransaction retrieves a resolved transaction by signature.
	// Returns (nil, nil) when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)

	// GetBlockTime retrieves the estimated production time of a block.
	GetBlockTime(ctx context.Context, slot int64) (*int64, error)
}

// Transaction is a fully resolved transaction record: ordered account
// list, per-account pre/post balances, and compiled instructions.
// Immutable once constructed; discarded after an event is derived.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Succeeded bool  // meta.err == null

	AccountKeys []string

	// Top-level instructions followed by flattened inner (CPI) instructions.
	Instructions      []CompiledInstruction
	InnerInstructions []CompiledInstruction

	// Lamport balances indexed by account position.
	PreBalances  []uint64
	PostBalances []uint64

	// Token account balances keyed by account index.
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance

	LogMessages []string
}

// CompiledInstruction is an instruction referencing accounts by index.
type CompiledInstruction struct {
	ProgramIDIndex int
	Accounts       []int
	Data           string // base58-encoded instruction data
}

// ProgramID resolves the instruction's program address against the
// transaction's account list. Returns empty string on a bad index.
func (ix *CompiledInstruction) ProgramID(accountKeys []string) string {
	if ix.ProgramIDIndex < 0 || ix.ProgramIDIndex >= len(accountKeys) {
		return ""
	}
	return accountKeys[ix.ProgramIDIndex]
}

// TokenBalance is an SPL token account balance snapshot.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	Amount       uint64 // raw amount in base units
	Decimals     int
	UIAmount     float64
}
