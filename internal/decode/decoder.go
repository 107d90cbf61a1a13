// Package decode classifies resolved transactions into liquidity-pool
// operations and derives typed liquidity events from balance deltas.
// Everything here is pure: no I/O, no clocks, no shared state.
package decode

import (
	"encoding/base64"

	"github.com/mr-tron/base58"

	"lp-radar/internal/solana"
)

// Raydium AMM v4 program and the wrapped SOL mint.
const (
	RaydiumAMMV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	WSOLMint     = "So11111111111111111111111111111111111111112"
)

// Instruction variants. Unknown terminates processing with no event.
const (
	KindInitialize  = "initialize"
	KindInitialize2 = "initialize2"
	KindDeposit     = "deposit"
	KindWithdraw    = "withdraw"
	KindSwap        = "swap"
	KindUnknown     = "unknown"
)

// AMM v4 instruction discriminators (first byte of instruction data).
const (
	discInitialize  = 0
	discInitialize2 = 1
	discDeposit     = 3
	discWithdraw    = 4
	discSwap        = 9
)

// Account positions within each instruction's account list.
// The positions index into CompiledInstruction.Accounts, which in turn
// holds indices into the transaction account keys.
type accountLayout struct {
	pool      int
	coinVault int
	pcVault   int
}

var layouts = map[string]accountLayout{
	KindInitialize:  {pool: 3, coinVault: 9, pcVault: 10},
	KindInitialize2: {pool: 3, coinVault: 9, pcVault: 10},
	KindDeposit:     {pool: 1, coinVault: 6, pcVault: 7},
	KindWithdraw:    {pool: 1, coinVault: 6, pcVault: 7},
	KindSwap:        {pool: 1, coinVault: 4, pcVault: 5},
}

// DecodedInstruction identifies the liquidity-pool operation of a
// transaction and the vault accounts it touches. Vault indices point
// into the transaction's account key list.
type DecodedInstruction struct {
	Kind           string
	Pool           string // pool account address (AMM ID)
	CoinVaultIndex int    // account index of the coin-side vault
	PcVaultIndex   int    // account index of the pc-side vault
}

// NewPool reports whether the instruction creates a pool.
func (d DecodedInstruction) NewPool() bool {
	return d.Kind == KindInitialize || d.Kind == KindInitialize2
}

// Unknown is the decode result for irrelevant or unparseable transactions.
var Unknown = DecodedInstruction{Kind: KindUnknown, CoinVaultIndex: -1, PcVaultIndex: -1}

// DecodeTransaction finds the first AMM v4 instruction in the
// transaction and classifies it. Top-level instructions are checked
// first; inner (CPI) instructions only when the top level has none.
// Unrecognized transactions yield Unknown, which is a frequent and
// expected outcome, not an error.
func DecodeTransaction(tx *solana.Transaction) DecodedInstruction {
	if tx == nil || len(tx.AccountKeys) == 0 {
		return Unknown
	}

	if d := decodeInstructionSet(tx.Instructions, tx); d.Kind != KindUnknown {
		return d
	}
	return decodeInstructionSet(tx.InnerInstructions, tx)
}

func decodeInstructionSet(instructions []solana.CompiledInstruction, tx *solana.Transaction) DecodedInstruction {
	for i := range instructions {
		ix := &instructions[i]
		if ix.ProgramID(tx.AccountKeys) != RaydiumAMMV4 {
			continue
		}
		if d := decodeAMMInstruction(ix, tx); d.Kind != KindUnknown {
			return d
		}
	}
	return Unknown
}

// decodeAMMInstruction classifies a single AMM v4 instruction.
func decodeAMMInstruction(ix *solana.CompiledInstruction, tx *solana.Transaction) DecodedInstruction {
	data := decodeInstructionData(ix.Data)
	if len(data) == 0 {
		return Unknown
	}

	var kind string
	switch data[0] {
	case discInitialize:
		kind = KindInitialize
	case discInitialize2:
		kind = KindInitialize2
	case discDeposit:
		kind = KindDeposit
	case discWithdraw:
		kind = KindWithdraw
	case discSwap:
		kind = KindSwap
	default:
		return Unknown
	}

	layout := layouts[kind]

	d := DecodedInstruction{
		Kind:           kind,
		CoinVaultIndex: accountAt(ix, layout.coinVault),
		PcVaultIndex:   accountAt(ix, layout.pcVault),
	}

	if poolIdx := accountAt(ix, layout.pool); poolIdx >= 0 && poolIdx < len(tx.AccountKeys) {
		d.Pool = tx.AccountKeys[poolIdx]
	} else {
		d.Pool = poolFromBalances(tx)
	}

	if d.Pool == "" {
		return Unknown
	}
	return d
}

// accountAt resolves the instruction's account at position pos to a
// transaction account index. Returns -1 when out of range.
func accountAt(ix *solana.CompiledInstruction, pos int) int {
	if pos < 0 || pos >= len(ix.Accounts) {
		return -1
	}
	return ix.Accounts[pos]
}

// poolFromBalances is the fallback pool extraction: the owner of the
// largest WSOL vault in the post token balances. Vault owners for AMM
// v4 are the pool authority, an off-curve PDA, which identifies the
// pool well enough for per-pool windowing when the account layout is
// truncated. On-curve owners are wallet keys (a user's own WSOL
// account) and never the authority, so they are skipped.
func poolFromBalances(tx *solana.Transaction) string {
	var owner string
	var largest uint64
	for _, tb := range tx.PostTokenBalances {
		if tb.Mint != WSOLMint || tb.Owner == "" {
			continue
		}
		if solana.IsOnCurve(tb.Owner) {
			continue
		}
		if tb.Amount >= largest {
			largest = tb.Amount
			owner = tb.Owner
		}
	}
	return owner
}

// decodeInstructionData decodes instruction data as base58 with a
// base64 fallback. RPC json encoding uses base58; some providers hand
// out base64 payloads on websocket paths.
func decodeInstructionData(s string) []byte {
	if s == "" {
		return nil
	}
	if raw, err := base58.Decode(s); err == nil {
		return raw
	}
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		return raw
	}
	return nil
}
