package signals

import (
	"sync"
	"time"
)

// DefaultBaselineWindow is the rolling window for per-pool volume baselines.
const DefaultBaselineWindow = 60 * time.Minute

// minBaselineSamples is the number of prior samples needed before a
// multiplier is meaningful. A pool's first swaps establish the
// baseline instead of spiking against an empty one.
const minBaselineSamples = 3

// maxVolumeSamples bounds per-pool sample history.
const maxVolumeSamples = 512

type volumeSample struct {
	at       int64 // block time (Unix ms)
	lamports int64
}

// VolumeTracker maintains a rolling mean of per-pool swap volume and
// reports how strongly a new sample departs from it.
type VolumeTracker struct {
	window time.Duration

	mu    sync.Mutex
	pools map[string][]volumeSample
}

// NewVolumeTracker creates a volume tracker with the given window.
func NewVolumeTracker(window time.Duration) *VolumeTracker {
	if window <= 0 {
		window = DefaultBaselineWindow
	}
	return &VolumeTracker{
		window: window,
		pools:  make(map[string][]volumeSample),
	}
}

// Observe records a swap volume sample and returns the spike multiplier
// against the mean of prior in-window samples. Returns 0 while the
// baseline has too few samples to be meaningful.
func (v *VolumeTracker) Observe(pool string, lamports, at int64) float64 {
	if lamports <= 0 {
		return 0
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	samples := v.evict(pool, at)

	var multiplier float64
	if len(samples) >= minBaselineSamples {
		var sum int64
		for _, s := range samples {
			sum += s.lamports
		}
		mean := float64(sum) / float64(len(samples))
		if mean > 0 {
			multiplier = float64(lamports) / mean
		}
	}

	samples = append(samples, volumeSample{at: at, lamports: lamports})
	if len(samples) > maxVolumeSamples {
		samples = samples[len(samples)-maxVolumeSamples:]
	}
	v.pools[pool] = samples

	return multiplier
}

// evict drops samples older than the window and returns the remainder.
func (v *VolumeTracker) evict(pool string, at int64) []volumeSample {
	samples := v.pools[pool]
	cutoff := at - v.window.Milliseconds()

	i := 0
	for i < len(samples) && samples[i].at < cutoff {
		i++
	}
	if i > 0 {
		samples = samples[i:]
		if len(samples) == 0 {
			delete(v.pools, pool)
			return nil
		}
		v.pools[pool] = samples
	}
	return samples
}
