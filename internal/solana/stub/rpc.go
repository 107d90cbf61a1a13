package stub

import (
	"context"
	"errors"
	"sync"

	"lp-radar/internal/solana"
)

// ErrTransport simulates a transient transport failure.
var ErrTransport = errors.New("transport error")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu           sync.Mutex
	Transactions map[string]*solana.Transaction
	// FailuresBefore maps a signature to the number of transport errors
	// to return before succeeding. Used to exercise resolver retries.
	FailuresBefore map[string]int
	Calls          map[string]int
	CurrentSlot    int64
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions:   make(map[string]*solana.Transaction),
		FailuresBefore: make(map[string]int),
		Calls:          make(map[string]int),
	}
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

// GetTransaction retrieves a transaction from the stub store, failing
// with ErrTransport until the configured failure budget is spent.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls[signature]++

	if n := c.FailuresBefore[signature]; n > 0 {
		c.FailuresBefore[signature] = n - 1
		return nil, ErrTransport
	}

	tx, ok := c.Transactions[signature]
	if !ok {
		return nil, nil
	}
	return tx, nil
}

// GetSlot returns the configured current slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentSlot, nil
}

// GetBlockTime returns the block time of a stored transaction at the slot, if any.
func (c *RPCClient) GetBlockTime(_ context.Context, slot int64) (*int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tx := range c.Transactions {
		if tx.Slot == slot && tx.BlockTime != 0 {
			bt := tx.BlockTime
			return &bt, nil
		}
	}
	return nil, nil
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// CallCount returns how many times a signature was fetched.
func (c *RPCClient) CallCount(signature string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Calls[signature]
}
