// Package ingest drives the live pipeline: websocket notifications
// through the dedup gate, transaction resolution, instruction
// decoding, delta analysis, and on to filtering and the alert
// boundary.
package ingest

import (
	"context"
	"fmt"
	"time"

	"lp-radar/internal/observability"
	"lp-radar/internal/solana"
)

// Resolution failure reasons, used as metric labels.
const (
	ReasonTransport = "transport"
	ReasonNotFound  = "not_found"
)

const (
	defaultResolveAttempts = 3
	defaultResolveDelay    = 500 * time.Millisecond
)

// ResolutionError reports a signature that could not be resolved to a
// transaction after the retry budget was spent.
type ResolutionError struct {
	Signature string
	Reason    string
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve %s: %s: %v", e.Signature, e.Reason, e.Err)
	}
	return fmt.Sprintf("resolve %s: %s", e.Signature, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver fetches full transactions for notification signatures with
// a bounded retry budget. Notifications race the RPC node's indexing,
// so a not-yet-found transaction is retried like a transport error.
type Resolver struct {
	rpc      solana.RPCClient
	attempts int
	delay    time.Duration
}

// NewResolver creates a resolver over the given RPC client.
func NewResolver(rpc solana.RPCClient, attempts int, delay time.Duration) *Resolver {
	if attempts <= 0 {
		attempts = defaultResolveAttempts
	}
	if delay <= 0 {
		delay = defaultResolveDelay
	}
	return &Resolver{rpc: rpc, attempts: attempts, delay: delay}
}

// Resolve fetches the transaction for a signature. Returns a
// *ResolutionError when the budget is exhausted.
func (r *Resolver) Resolve(ctx context.Context, signature string) (*solana.Transaction, error) {
	var lastErr error

	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.delay):
			}
		}

		start := time.Now()
		tx, err := r.rpc.GetTransaction(ctx, signature)
		observability.RecordRPCLatency("getTransaction", time.Since(start).Seconds())
		if err != nil {
			lastErr = err
			continue
		}
		if tx != nil {
			return tx, nil
		}
	}

	if lastErr != nil {
		return nil, &ResolutionError{Signature: signature, Reason: ReasonTransport, Err: lastErr}
	}
	return nil, &ResolutionError{Signature: signature, Reason: ReasonNotFound}
}
