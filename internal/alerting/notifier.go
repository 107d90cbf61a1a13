// Package alerting is the boundary between evaluation and the outside
// world. Every decision is persisted as an Alert; only accepted,
// within-quota decisions are dispatched to the notifier.
package alerting

import (
	"context"
	"fmt"
	"log"
)

// Disclaimer is attached to every dispatched notification.
const Disclaimer = "informational signal, not financial advice"

// DispatchRequest is the payload handed to a notifier for an accepted
// event. It carries labels, never raw transaction data.
type DispatchRequest struct {
	AlertID    string
	Pair       string
	Kind       string
	Magnitude  float64
	Priority   string
	Reason     string
	Disclaimer string
}

// Notifier delivers accepted alerts to an external channel.
type Notifier interface {
	Notify(ctx context.Context, req DispatchRequest) error
}

// LogNotifier writes dispatches to the process log. The default sink
// when no external channel is configured.
type LogNotifier struct {
	logger *log.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, req DispatchRequest) error {
	n.logger.Printf("ALERT [%s] %s %s magnitude=%.2f reason=%q (%s)",
		req.Priority, req.Pair, req.Kind, req.Magnitude, req.Reason, req.Disclaimer)
	return nil
}

// FuncNotifier adapts a function to the Notifier interface.
type FuncNotifier func(ctx context.Context, req DispatchRequest) error

func (f FuncNotifier) Notify(ctx context.Context, req DispatchRequest) error {
	return f(ctx, req)
}

// MultiNotifier fans a dispatch out to several channels, returning the
// first error after attempting all of them.
type MultiNotifier []Notifier

var _ Notifier = (MultiNotifier)(nil)

func (m MultiNotifier) Notify(ctx context.Context, req DispatchRequest) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, req); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("notify: %w", err)
		}
	}
	return firstErr
}
