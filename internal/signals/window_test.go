package signals

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const minute = int64(60_000)

func TestTracker_ConfirmOnSecondDistinctKind(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	status, transitioned := tr.Record("pool1", "lp_add", 0)
	assert.Equal(t, StatusUnconfirmed, status)
	assert.False(t, transitioned)

	// Same kind again: still one distinct kind.
	status, transitioned = tr.Record("pool1", "lp_add", 5*minute)
	assert.Equal(t, StatusUnconfirmed, status)
	assert.False(t, transitioned)

	// Second distinct kind flips to confirmed.
	status, transitioned = tr.Record("pool1", "volume_spike", 10*minute)
	assert.Equal(t, StatusConfirmed, status)
	assert.True(t, transitioned)
}

func TestTracker_ConfirmationMonotonic(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	tr.Record("pool1", "lp_add", 0)
	_, transitioned := tr.Record("pool1", "volume_spike", minute)
	assert.True(t, transitioned)

	// Further signals of any kind never re-trigger the transition
	// while the window is live.
	for i := int64(2); i < 10; i++ {
		status, again := tr.Record("pool1", "lp_add", i*minute)
		assert.Equal(t, StatusConfirmed, status)
		assert.False(t, again, "confirmation must flip exactly once per fresh window")
	}
}

func TestTracker_FullDecayReArmsConfirmation(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	tr.Record("pool1", "lp_add", 0)
	_, transitioned := tr.Record("pool1", "volume_spike", minute)
	assert.True(t, transitioned)

	// 40 minutes later every entry has decayed; the next pair of
	// distinct signals confirms afresh.
	status, transitioned := tr.Record("pool1", "lp_add", 41*minute)
	assert.Equal(t, StatusUnconfirmed, status)
	assert.False(t, transitioned)

	status, transitioned = tr.Record("pool1", "volume_spike", 45*minute)
	assert.Equal(t, StatusConfirmed, status)
	assert.True(t, transitioned)
}

func TestTracker_PartialDecayKeepsConfirmation(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	tr.Record("pool1", "lp_add", 0)
	tr.Record("pool1", "volume_spike", 20*minute)

	// The lp_add entry has decayed but the spike is still live:
	// the pool remains confirmed and must not re-transition.
	status, transitioned := tr.Record("pool1", "lp_add", 35*minute)
	assert.Equal(t, StatusConfirmed, status)
	assert.False(t, transitioned)
}

func TestTracker_PoolsIndependent(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	tr.Record("pool1", "lp_add", 0)
	status, _ := tr.Record("pool2", "volume_spike", minute)
	assert.Equal(t, StatusUnconfirmed, status, "signals must not leak across pools")
}

func TestTracker_StatusAt(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	assert.Equal(t, StatusUnconfirmed, tr.StatusAt("pool1", 0))

	tr.Record("pool1", "lp_add", 0)
	tr.Record("pool1", "volume_spike", minute)
	assert.Equal(t, StatusConfirmed, tr.StatusAt("pool1", 2*minute))

	// Fully decayed.
	assert.Equal(t, StatusUnconfirmed, tr.StatusAt("pool1", 60*minute))
}

func TestTracker_DuplicatesRetainedForInspection(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	tr.Record("pool1", "lp_add", 0)
	tr.Record("pool1", "lp_add", minute)
	tr.Record("pool1", "lp_add", 2*minute)

	entries := tr.Entries("pool1", 2*minute)
	assert.Len(t, entries, 3)
}

func TestTracker_OutOfOrderInsertsKeepTimeOrder(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	tr.Record("pool1", "lp_add", 10*minute)
	tr.Record("pool1", "volume_spike", 8*minute)

	entries := tr.Entries("pool1", 10*minute)
	assert.Len(t, entries, 2)
	assert.Equal(t, int64(8*minute), entries[0].At)
	assert.Equal(t, int64(10*minute), entries[1].At)
}

func TestTracker_DecayedPoolsReleased(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	pools := make([]string, 1000)
	for i := range pools {
		pools[i] = "pool" + strconv.Itoa(i)
	}
	for i, pool := range pools {
		tr.Record(pool, "lp_add", int64(i)*1000)
	}
	assert.Equal(t, len(pools), tr.PoolCount())

	// Two hours later every window has fully decayed; touching each
	// pool must release its state rather than retain it forever.
	later := 120 * minute
	for _, pool := range pools {
		assert.Equal(t, StatusUnconfirmed, tr.StatusAt(pool, later))
	}
	assert.Equal(t, 0, tr.PoolCount(), "decayed windows must not accumulate")
}

func TestTracker_RecordAfterDecayKeepsPoolLive(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	tr.Record("pool1", "lp_add", 0)

	// A fresh signal past full decay evicts the old window and starts
	// a new one; the pool stays tracked with exactly the new entry.
	tr.Record("pool1", "volume_spike", 60*minute)
	assert.Equal(t, 1, tr.PoolCount())

	entries := tr.Entries("pool1", 60*minute)
	assert.Len(t, entries, 1)
	assert.Equal(t, "volume_spike", entries[0].Kind)
}

func TestTracker_DefaultWindow(t *testing.T) {
	tr := NewTracker(0)

	tr.Record("pool1", "lp_add", 0)
	tr.Record("pool1", "volume_spike", minute)

	// Live at 29 minutes, fully decayed past the 30-minute default.
	assert.Equal(t, StatusConfirmed, tr.StatusAt("pool1", 29*minute))
	assert.Equal(t, StatusUnconfirmed, tr.StatusAt("pool1", 32*minute))
}

func TestTracker_BoundedEntries(t *testing.T) {
	tr := NewTracker(30 * time.Minute)

	for i := int64(0); i < 200; i++ {
		tr.Record("pool1", "lp_add", i*1000)
	}

	entries := tr.Entries("pool1", 200*1000)
	assert.LessOrEqual(t, len(entries), defaultMaxEntries)
}
