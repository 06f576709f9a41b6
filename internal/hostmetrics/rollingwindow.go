package hostmetrics

import (
	"slices"
	"sync"
)

// rollingWindow tracks the last N call latencies for percentile calculation,
// independent of whatever the OTel SDK aggregates, giving instant in-process
// percentiles without a Prometheus scrape round-trip. Backed by a ring
// buffer so only the most recent [size] measurements are kept. Safe for
// concurrent use.
type rollingWindow struct {
	mu      sync.Mutex
	samples []int64 // ring buffer of latency measurements in ms
	pos     int     // next write position
	count   int     // total samples written (may exceed len(samples))
	errors  int     // error count in current window
	size    int     // window capacity
}

// newRollingWindow creates a new rolling window with the given capacity.
// A size of 0 or negative defaults to 100.
func newRollingWindow(size int) *rollingWindow {
	if size <= 0 {
		size = 100
	}
	return &rollingWindow{
		samples: make([]int64, size),
		size:    size,
	}
}

// Record adds a latency measurement (in ms) to the window and increments the
// error counter when isError is true. The oldest measurement is overwritten
// once the buffer is full.
func (w *rollingWindow) Record(latencyMs int64, isError bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples[w.pos] = latencyMs
	w.pos = (w.pos + 1) % w.size
	w.count++

	if isError {
		w.errors++
		if w.errors > w.size {
			w.errors = w.size
		}
	}
}

func (w *rollingWindow) windowLen() int {
	if w.count >= w.size {
		return w.size
	}
	return w.count
}

func (w *rollingWindow) sortedCopy() []int64 {
	n := w.windowLen()
	if n == 0 {
		return nil
	}
	cp := make([]int64, n)
	if w.count >= w.size {
		for i := 0; i < w.size; i++ {
			cp[i] = w.samples[(w.pos+i)%w.size]
		}
	} else {
		copy(cp, w.samples[:n])
	}
	slices.Sort(cp)
	return cp
}

// P50 returns the median (50th-percentile) latency in ms, or 0 if empty.
func (w *rollingWindow) P50() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	sorted := w.sortedCopy()
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)/2]
}

// P99 returns the 99th-percentile latency in ms, or 0 if empty.
func (w *rollingWindow) P99() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	sorted := w.sortedCopy()
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * 0.99)
	return sorted[idx]
}

// ErrorRate returns the fraction of calls in the current window that
// resulted in an error (0.0-1.0), or 0 if empty.
func (w *rollingWindow) ErrorRate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := w.windowLen()
	if n == 0 {
		return 0
	}
	errInWindow := min(w.errors, n)
	return float64(errInWindow) / float64(n)
}

// Count returns the total number of invocations recorded (may exceed window
// capacity).
func (w *rollingWindow) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// ServerStats is a point-in-time snapshot of one server's rolling call
// statistics, as returned by [StatsRegistry.Snapshot]. No bridge endpoint
// serves these statistics.
type ServerStats struct {
	P50Ms     int64
	P99Ms     int64
	ErrorRate float64
	Count     int
}

// StatsRegistry tracks a [rollingWindow] per MCP server ID, populated by
// [StatsRegistry.RecordCall] and read back via [StatsRegistry.Snapshot].
type StatsRegistry struct {
	mu      sync.Mutex
	windows map[string]*rollingWindow
}

// NewStatsRegistry returns an empty, ready-to-use [StatsRegistry].
func NewStatsRegistry() *StatsRegistry {
	return &StatsRegistry{windows: make(map[string]*rollingWindow)}
}

// RecordCall records one call's latency and error status for serverID.
func (r *StatsRegistry) RecordCall(serverID string, latencyMs int64, isError bool) {
	r.mu.Lock()
	w, ok := r.windows[serverID]
	if !ok {
		w = newRollingWindow(100)
		r.windows[serverID] = w
	}
	r.mu.Unlock()
	w.Record(latencyMs, isError)
}

// Snapshot returns the current [ServerStats] for every server that has
// recorded at least one call.
func (r *StatsRegistry) Snapshot() map[string]ServerStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]ServerStats, len(r.windows))
	for id, w := range r.windows {
		out[id] = ServerStats{
			P50Ms:     w.P50(),
			P99Ms:     w.P99(),
			ErrorRate: w.ErrorRate(),
			Count:     w.Count(),
		}
	}
	return out
}
