// Package signals correlates per-pool signal kinds across a sliding
// time window and maintains rolling volume baselines.
package signals

import (
	"sync"
	"time"
)

// Status is a pool window's confirmation state.
type Status string

const (
	// StatusUnconfirmed: fewer than two distinct signal kinds in the live window.
	StatusUnconfirmed Status = "unconfirmed"
	// StatusConfirmed: a second distinct kind appeared and the window
	// has not fully decayed since.
	StatusConfirmed Status = "confirmed"
)

// DefaultWindow is the correlation window for multi-signal confirmation.
const DefaultWindow = 30 * time.Minute

// defaultMaxEntries bounds per-pool state; duplicates beyond it are
// dropped oldest-first.
const defaultMaxEntries = 64

// Entry is one recorded signal occurrence.
type Entry struct {
	Kind string
	At   int64 // block time (Unix ms)
}

type poolWindow struct {
	entries   []Entry // ordered by At ascending
	confirmed bool
}

// Tracker keeps, per pool account, a bounded ordered history of signal
// kinds and detects multi-signal confirmation.
//
// Confirmation is a one-time transition per window contents: once a
// pool is confirmed it stays confirmed while any entry remains live,
// and only a fully decayed window re-arms the transition. Callers must
// feed each pool's signals in block-time order; the ingestion layer
// serializes per-pool updates.
type Tracker struct {
	window     time.Duration
	maxEntries int

	mu    sync.Mutex
	pools map[string]*poolWindow
}

// NewTracker creates a tracker with the given window duration.
func NewTracker(window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window:     window,
		maxEntries: defaultMaxEntries,
		pools:      make(map[string]*poolWindow),
	}
}

// Record appends a signal to the pool's window, evicting entries older
// than the window, and returns the current confirmation status plus
// whether this call performed the unconfirmed-to-confirmed transition.
func (t *Tracker) Record(pool, kind string, at int64) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.pools[pool]
	if w == nil {
		w = &poolWindow{}
		t.pools[pool] = w
	}

	t.evict(pool, w, at)
	// evict releases fully decayed windows; this one receives an entry.
	t.pools[pool] = w

	// Insert keeping block-time order; near-window entries may arrive
	// marginally out of order.
	i := len(w.entries)
	for i > 0 && w.entries[i-1].At > at {
		i--
	}
	w.entries = append(w.entries, Entry{})
	copy(w.entries[i+1:], w.entries[i:])
	w.entries[i] = Entry{Kind: kind, At: at}

	if len(w.entries) > t.maxEntries {
		w.entries = w.entries[len(w.entries)-t.maxEntries:]
	}

	if !w.confirmed && t.distinctKinds(w) >= 2 {
		w.confirmed = true
		return StatusConfirmed, true
	}
	if w.confirmed {
		return StatusConfirmed, false
	}
	return StatusUnconfirmed, false
}

// StatusAt returns the pool's confirmation status as of the given time,
// evicting decayed entries first.
func (t *Tracker) StatusAt(pool string, at int64) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.pools[pool]
	if w == nil {
		return StatusUnconfirmed
	}

	t.evict(pool, w, at)
	if w.confirmed {
		return StatusConfirmed
	}
	return StatusUnconfirmed
}

// Entries returns a copy of the pool's live window as of the given time.
// Duplicates within the window are retained for inspection.
func (t *Tracker) Entries(pool string, at int64) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.pools[pool]
	if w == nil {
		return nil
	}

	t.evict(pool, w, at)
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// PoolCount returns the number of pools with retained window state.
func (t *Tracker) PoolCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pools)
}

// evict drops entries older than the window. A fully decayed window
// re-arms the confirmation transition and is removed from the map.
func (t *Tracker) evict(pool string, w *poolWindow, at int64) {
	cutoff := at - t.window.Milliseconds()

	i := 0
	for i < len(w.entries) && w.entries[i].At < cutoff {
		i++
	}
	if i > 0 {
		w.entries = w.entries[i:]
	}

	if len(w.entries) == 0 {
		w.confirmed = false
		delete(t.pools, pool)
	}
}

func (t *Tracker) distinctKinds(w *poolWindow) int {
	seen := make(map[string]struct{}, 4)
	for _, e := range w.entries {
		seen[e.Kind] = struct{}{}
	}
	return len(seen)
}
