package audiofx

import (
	"sync"
	"time"
)

// defaultHistorySize bounds the rolling per-block processing time history.
const defaultHistorySize = 256

// PerformanceSnapshot is a derived, read-only view over the pipeline's
// rolling processing time history, recomputed on demand.
type PerformanceSnapshot struct {
	AverageProcessingTime time.Duration `json:"averageProcessingTime"`
	MinProcessingTime     time.Duration `json:"minProcessingTime"`
	MaxProcessingTime     time.Duration `json:"maxProcessingTime"`
	OverloadCount         uint64        `json:"overloadCount"`
	ActiveChains          int           `json:"activeChains"`
	LatencyMode           string        `json:"latencyMode"`
	BlockSize             int           `json:"bufferSize"`
	SampleRate            int           `json:"sampleRate"`
}

// durationRing is a bounded ring of per-block processing durations. It is
// owned by the pipeline instance and queried on demand; there is no ambient
// global accumulation.
type durationRing struct {
	mu    sync.Mutex
	items []time.Duration
	next  int
	full  bool
}

func newDurationRing(size int) *durationRing {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &durationRing{items: make([]time.Duration, size)}
}

func (r *durationRing) Append(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.next] = d
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.full = true
	}
}

// Stats returns the average, minimum and maximum over the recorded history.
// All zero when nothing has been recorded yet.
func (r *durationRing) Stats() (avg, minimum, maximum time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.full {
		n = len(r.items)
	}
	if n == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	minimum = r.items[0]
	for i := 0; i < n; i++ {
		d := r.items[i]
		sum += d
		if d < minimum {
			minimum = d
		}
		if d > maximum {
			maximum = d
		}
	}
	return sum / time.Duration(n), minimum, maximum
}

func (r *durationRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = 0
	r.full = false
}
