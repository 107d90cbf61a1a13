package dedupe

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	expireAt int64 // unix nano
}

// Memory is an in-process Deduper with TTL-bounded retention.
// Single admission under concurrency is guaranteed by the mutex:
// the check and the record happen in one critical section.
type Memory struct {
	ttl     time.Duration
	mu      sync.Mutex
	items   map[string]memEntry
	stopCh  chan struct{}
	stopped bool
}

// NewMemory creates an in-memory deduper.
// ttl bounds the retention horizon; janitorEvery controls how often
// expired entries are collected (0 disables the collector).
func NewMemory(ttl, janitorEvery time.Duration) *Memory {
	m := &Memory{
		ttl:    ttl,
		items:  make(map[string]memEntry, 1024),
		stopCh: make(chan struct{}),
	}

	if janitorEvery > 0 {
		go m.janitor(janitorEvery)
	}

	return m
}

// Compile-time interface check.
var _ Deduper = (*Memory)(nil)

// Seen records id and reports whether it was already recorded within the TTL.
func (m *Memory) Seen(_ context.Context, id string) (bool, error) {
	now := time.Now().UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.items[id]; ok && e.expireAt > now {
		return true, nil
	}

	m.items[id] = memEntry{expireAt: now + m.ttl.Nanoseconds()}
	return false, nil
}

// Len returns the current number of retained entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-t.C:
			now := time.Now().UnixNano()
			m.mu.Lock()
			for k, e := range m.items {
				if e.expireAt <= now {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Close stops the janitor goroutine if it is running.
func (m *Memory) Close() {
	m.mu.Lock()
	if !m.stopped {
		close(m.stopCh)
		m.stopped = true
	}
	m.mu.Unlock()
}
