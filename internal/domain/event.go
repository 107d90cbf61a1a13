package domain

// LiquidityEvent is the canonical derived fact of the pipeline.
// Corresponds to liquidity_events table in PostgreSQL.
// Created once, immutable, persisted regardless of downstream filtering.
type LiquidityEvent struct {
	EventID         string  // deterministic SHA256 id, see idhash.ComputeEventID
	Pool            string  // pool account address (AMM ID)
	BaseMint        string  // base token mint address
	BaseSymbol      string  // base token symbol, resolved lazily (may be empty)
	QuoteSymbol     string  // quote symbol, usually SOL
	Kind            string  // "lp_add" | "lp_remove" | "volume_spike"
	SolDelta        int64   // signed SOL vault delta in lamports
	TokenDelta      float64 // signed token vault delta (ui amount)
	SpikeMultiplier float64 // observed/baseline volume ratio, volume_spike only
	NewPool         bool    // pool creation (initialize variants)
	TxSignature     string  // source transaction signature
	Slot            int64   // Solana slot number
	ObservedAt      int64   // block time (Unix ms)
	CreatedAt       int64   // record creation timestamp (ms)
}

// Liquidity event kind constants.
const (
	EventLPAdd       = "lp_add"
	EventLPRemove    = "lp_remove"
	EventVolumeSpike = "volume_spike"
)

// LamportsPerSol converts between lamports and whole SOL.
const LamportsPerSol = 1_000_000_000

// SolAmount returns the event's SOL delta in whole SOL.
func (e *LiquidityEvent) SolAmount() float64 {
	return float64(e.SolDelta) / LamportsPerSol
}

// Pair returns the "BASE/QUOTE" pair label, falling back to the mint
// address when the symbol was never resolved.
func (e *LiquidityEvent) Pair() string {
	base := e.BaseSymbol
	if base == "" {
		base = e.BaseMint
	}
	quote := e.QuoteSymbol
	if quote == "" {
		quote = "SOL"
	}
	return base + "/" + quote
}
