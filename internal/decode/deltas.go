package decode

import (
	"errors"
	"fmt"

	"lp-radar/internal/domain"
	"lp-radar/internal/idhash"
	"lp-radar/internal/solana"
)

// NoiseFloorLamports is the minimum absolute SOL vault delta for an
// event to be considered real. Deltas below it are dust, rounding, or
// rent adjustments and produce no event. 0.1 SOL.
const NoiseFloorLamports = 100_000_000

// ErrMalformedPayload marks transactions whose balance layout does not
// match the decoded instruction. Skipped, never retried.
var ErrMalformedPayload = errors.New("malformed payload")

// VaultDeltas are the signed balance changes of a pool's two vaults.
type VaultDeltas struct {
	Pool       string
	SolDelta   int64   // WSOL vault delta in lamports
	TokenDelta float64 // token vault delta (ui amount)
	TokenMint  string  // the non-WSOL side's mint
}

// ComputeVaultDeltas resolves which vault holds wrapped SOL and
// computes signed pre/post deltas for both sides.
func ComputeVaultDeltas(instr DecodedInstruction, tx *solana.Transaction) (VaultDeltas, error) {
	if instr.Kind == KindUnknown {
		return VaultDeltas{}, fmt.Errorf("%w: unknown instruction", ErrMalformedPayload)
	}

	coinMint := mintAt(tx, instr.CoinVaultIndex)
	pcMint := mintAt(tx, instr.PcVaultIndex)

	var solVault, tokenVault int
	var tokenMint string
	switch {
	case coinMint == WSOLMint:
		solVault, tokenVault, tokenMint = instr.CoinVaultIndex, instr.PcVaultIndex, pcMint
	case pcMint == WSOLMint:
		solVault, tokenVault, tokenMint = instr.PcVaultIndex, instr.CoinVaultIndex, coinMint
	default:
		return VaultDeltas{}, fmt.Errorf("%w: no WSOL vault in pair", ErrMalformedPayload)
	}

	solPre, solPost, solOK := rawAmounts(tx, solVault)
	if !solOK {
		// WSOL vaults are token accounts; lamport balances track them too.
		solPre, solPost, solOK = lamportBalances(tx, solVault)
	}
	if !solOK {
		return VaultDeltas{}, fmt.Errorf("%w: missing balances for SOL vault %d", ErrMalformedPayload, solVault)
	}

	d := VaultDeltas{
		Pool:      instr.Pool,
		SolDelta:  int64(solPost) - int64(solPre),
		TokenMint: tokenMint,
	}

	tokenPre, tokenPost, tokenOK := uiAmounts(tx, tokenVault)
	if !tokenOK {
		return VaultDeltas{}, fmt.Errorf("%w: missing balances for token vault %d", ErrMalformedPayload, tokenVault)
	}
	d.TokenDelta = tokenPost - tokenPre

	return d, nil
}

// BuildEvent classifies vault deltas into a LiquidityEvent.
// Returns nil when the deltas are sub-threshold noise, move in mixed
// directions, or belong to a kind with no direct event (swaps feed the
// volume tracker instead).
func BuildEvent(instr DecodedInstruction, d VaultDeltas, tx *solana.Transaction) *domain.LiquidityEvent {
	var kind string
	switch instr.Kind {
	case KindInitialize, KindInitialize2, KindDeposit:
		kind = domain.EventLPAdd
		if d.SolDelta <= 0 || d.TokenDelta <= 0 {
			return nil
		}
	case KindWithdraw:
		kind = domain.EventLPRemove
		if d.SolDelta >= 0 || d.TokenDelta >= 0 {
			return nil
		}
	default:
		return nil
	}

	if abs64(d.SolDelta) < NoiseFloorLamports {
		return nil
	}

	observedAt := tx.BlockTime * 1000

	return &domain.LiquidityEvent{
		EventID:     idhash.ComputeEventID(tx.Signature, d.Pool, kind),
		Pool:        d.Pool,
		BaseMint:    d.TokenMint,
		QuoteSymbol: "SOL",
		Kind:        kind,
		SolDelta:    d.SolDelta,
		TokenDelta:  d.TokenDelta,
		NewPool:     instr.NewPool(),
		TxSignature: tx.Signature,
		Slot:        tx.Slot,
		ObservedAt:  observedAt,
		CreatedAt:   observedAt,
	}
}

// SwapVolumeLamports returns the absolute WSOL vault movement of a
// swap, the per-transaction volume sample for spike detection.
// Returns 0 for non-swaps or unresolvable layouts.
func SwapVolumeLamports(instr DecodedInstruction, tx *solana.Transaction) int64 {
	if instr.Kind != KindSwap {
		return 0
	}
	d, err := ComputeVaultDeltas(instr, tx)
	if err != nil {
		return 0
	}
	return abs64(d.SolDelta)
}

// mintAt returns the mint of the token account at the given account
// index, consulting post balances first (pool creation has no pre).
func mintAt(tx *solana.Transaction, accountIndex int) string {
	for _, tb := range tx.PostTokenBalances {
		if tb.AccountIndex == accountIndex {
			return tb.Mint
		}
	}
	for _, tb := range tx.PreTokenBalances {
		if tb.AccountIndex == accountIndex {
			return tb.Mint
		}
	}
	return ""
}

// rawAmounts returns pre/post raw token amounts for an account index.
// A side missing from one snapshot is zero (accounts created or closed
// within the transaction).
func rawAmounts(tx *solana.Transaction, accountIndex int) (pre, post uint64, ok bool) {
	for _, tb := range tx.PreTokenBalances {
		if tb.AccountIndex == accountIndex {
			pre, ok = tb.Amount, true
		}
	}
	for _, tb := range tx.PostTokenBalances {
		if tb.AccountIndex == accountIndex {
			post, ok = tb.Amount, true
		}
	}
	return pre, post, ok
}

// uiAmounts returns pre/post ui token amounts for an account index.
func uiAmounts(tx *solana.Transaction, accountIndex int) (pre, post float64, ok bool) {
	for _, tb := range tx.PreTokenBalances {
		if tb.AccountIndex == accountIndex {
			pre, ok = tb.UIAmount, true
		}
	}
	for _, tb := range tx.PostTokenBalances {
		if tb.AccountIndex == accountIndex {
			post, ok = tb.UIAmount, true
		}
	}
	return pre, post, ok
}

// lamportBalances returns pre/post lamport balances for an account index.
func lamportBalances(tx *solana.Transaction, accountIndex int) (pre, post uint64, ok bool) {
	if accountIndex < 0 {
		return 0, 0, false
	}
	if accountIndex < len(tx.PreBalances) {
		pre, ok = tx.PreBalances[accountIndex], true
	}
	if accountIndex < len(tx.PostBalances) {
		post, ok = tx.PostBalances[accountIndex], true
	}
	return pre, post, ok
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
