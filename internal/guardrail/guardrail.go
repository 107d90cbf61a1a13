// Package guardrail enforces the advisory safety rails around alert
// dispatch: the per-day action quota and the profile switch cooldown.
// Quota exhaustion never blocks persistence, only dispatch.
package guardrail

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SwitchCooldown is the minimum interval between profile switches.
// Prevents chasing a hot market by loosening thresholds mid-run.
const SwitchCooldown = 7 * 24 * time.Hour

// dailyResetSpec fires at midnight UTC.
const dailyResetSpec = "0 0 * * *"

// ProfileLockedError reports a profile switch attempted inside the
// cooldown window.
type ProfileLockedError struct {
	LastSwitch      time.Time
	EarliestAllowed time.Time
}

func (e *ProfileLockedError) Error() string {
	return fmt.Sprintf("profile locked until %s (last switch %s)",
		e.EarliestAllowed.UTC().Format(time.RFC3339),
		e.LastSwitch.UTC().Format(time.RFC3339))
}

// Guardrail tracks dispatched actions against the daily quota and
// gates profile switches behind the cooldown. Safe for concurrent use.
type Guardrail struct {
	logger *log.Logger

	mu         sync.Mutex
	quota      int
	day        string // UTC date of the current counter, YYYY-MM-DD
	actions    int
	lastSwitch time.Time
}

// New creates a guardrail with the given daily quota. lastSwitch
// seeds the cooldown from the persisted active-profile record; pass
// the zero time for a fresh install.
func New(quota int, lastSwitch time.Time, logger *log.Logger) *Guardrail {
	if logger == nil {
		logger = log.Default()
	}
	return &Guardrail{
		logger:     logger,
		quota:      quota,
		lastSwitch: lastSwitch,
	}
}

// StartDailyReset registers the midnight counter reset on the given
// scheduler. The lazy day check in rollDay covers missed ticks; the
// cron job keeps the logged remaining-quota accurate overnight.
func (g *Guardrail) StartDailyReset(c *cron.Cron) (cron.EntryID, error) {
	return c.AddFunc(dailyResetSpec, func() {
		g.mu.Lock()
		g.day = dayKey(time.Now())
		g.actions = 0
		quota := g.quota
		g.mu.Unlock()
		g.logger.Printf("daily action quota reset: %d available", quota)
	})
}

// RecordAction counts one dispatched action and returns the remaining
// quota for the day.
func (g *Guardrail) RecordAction(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollDay(now)
	g.actions++

	remaining := g.quota - g.actions
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// QuotaExhausted reports whether the day's action quota is used up.
// A zero quota means unlimited.
func (g *Guardrail) QuotaExhausted(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollDay(now)
	return g.quota > 0 && g.actions >= g.quota
}

// ActionsToday returns the number of actions counted for the current day.
func (g *Guardrail) ActionsToday(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollDay(now)
	return g.actions
}

// SetQuota swaps the daily quota, used when the active profile changes.
func (g *Guardrail) SetQuota(quota int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.quota = quota
}

// RequestProfileSwitch checks the cooldown and, if permitted, records
// the switch time. Returns *ProfileLockedError while locked.
func (g *Guardrail) RequestProfileSwitch(now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lastSwitch.IsZero() {
		earliest := g.lastSwitch.Add(SwitchCooldown)
		if now.Before(earliest) {
			return &ProfileLockedError{
				LastSwitch:      g.lastSwitch,
				EarliestAllowed: earliest,
			}
		}
	}

	g.lastSwitch = now
	return nil
}

// LastSwitch returns the recorded time of the most recent profile switch.
func (g *Guardrail) LastSwitch() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSwitch
}

// rollDay resets the counter when the UTC date has changed.
// Callers hold g.mu.
func (g *Guardrail) rollDay(now time.Time) {
	key := dayKey(now)
	if key != g.day {
		g.day = key
		g.actions = 0
	}
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
