package alerting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lp-radar/internal/domain"
	"lp-radar/internal/filter"
	"lp-radar/internal/guardrail"
	"lp-radar/internal/idhash"
	"lp-radar/internal/storage"
)

// Boundary persists every decision and dispatches the accepted ones.
// Persistence is the source of truth; dispatch failures are logged,
// never propagated back into the pipeline.
type Boundary struct {
	alerts   storage.AlertStore
	notifier Notifier
	guard    *guardrail.Guardrail
	logger   *log.Logger
}

// NewBoundary creates the alert boundary. guard may be nil to disable
// quota enforcement.
func NewBoundary(alerts storage.AlertStore, notifier Notifier, guard *guardrail.Guardrail, logger *log.Logger) *Boundary {
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Boundary{
		alerts:   alerts,
		notifier: notifier,
		guard:    guard,
		logger:   logger,
	}
}

// Process records the verdict for an event as an Alert and, for
// accepted verdicts inside quota, dispatches a notification. Replayed
// events produce the identical Alert row: the deterministic id makes
// the insert a no-op and suppresses a second dispatch.
func (b *Boundary) Process(ctx context.Context, event *domain.LiquidityEvent, verdict filter.Verdict) (*domain.Alert, error) {
	at := time.UnixMilli(event.ObservedAt)

	quotaExhausted := false
	if verdict.Accepted() && b.guard != nil {
		quotaExhausted = b.guard.QuotaExhausted(at)
	}
	dispatch := verdict.Accepted() && !quotaExhausted

	alert := &domain.Alert{
		AlertID:        idhash.ComputeAlertID(event.EventID, event.ObservedAt),
		EventID:        event.EventID,
		Pool:           event.Pool,
		Pair:           event.Pair(),
		Kind:           event.Kind,
		Magnitude:      verdict.Magnitude,
		Passed:         verdict.Accepted(),
		Dispatched:     dispatch,
		QuotaExhausted: quotaExhausted,
		Priority:       verdict.Priority,
		Reason:         verdict.Reason,
		CreatedAt:      event.ObservedAt,
	}

	if err := b.alerts.Insert(ctx, alert); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			b.logger.Printf("alert %s already recorded, skipping dispatch", alert.AlertID)
			return b.alerts.GetByID(ctx, alert.AlertID)
		}
		return nil, fmt.Errorf("persist alert: %w", err)
	}

	if dispatch {
		if b.guard != nil {
			// The quota counts dispatched notifications, the one daily
			// volume the guardrail soft-caps. Recorded-only alerts
			// (rejected or over quota) never consume it.
			remaining := b.guard.RecordAction(at)
			b.logger.Printf("alert %s dispatched, %d actions remaining today", alert.AlertID, remaining)
		}
		req := DispatchRequest{
			AlertID:    alert.AlertID,
			Pair:       alert.Pair,
			Kind:       alert.Kind,
			Magnitude:  alert.Magnitude,
			Priority:   alert.Priority,
			Reason:     alert.Reason,
			Disclaimer: Disclaimer,
		}
		if err := b.notifier.Notify(ctx, req); err != nil {
			b.logger.Printf("dispatch alert %s: %v", alert.AlertID, err)
		}
	} else if quotaExhausted {
		b.logger.Printf("alert %s passed checks but daily quota exhausted, recorded without dispatch", alert.AlertID)
	}

	return alert, nil
}
