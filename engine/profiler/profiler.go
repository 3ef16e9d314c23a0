// package profiler reports render loop timing and Go memory statistics to
// the log at a fixed interval.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler aggregates per-frame timing between reports. One Tick call per
// rendered frame; a report is written once per interval.
type Profiler struct {
	interval time.Duration

	frames     int
	worstFrame time.Duration
	lastTick   time.Time
	lastReport time.Time

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithReportInterval sets how often statistics are written to the log.
//
// Parameters:
//   - interval: time between reports (default 1s)
//
// Returns:
//   - ProfilerOption: option function to apply
func WithReportInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// NewProfiler creates a Profiler reporting once per second by default.
//
// Parameters:
//   - options: functional options to further configure the profiler
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerOption) *Profiler {
	now := time.Now()
	p := &Profiler{
		interval:   time.Second,
		lastTick:   now,
		lastReport: now,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Tick records one frame. When the report interval has elapsed it logs the
// average frame rate, the worst frame time in the window, heap usage,
// allocation rate, and GC activity.
//
// Returns:
//   - bool: true if a report was written this tick
func (p *Profiler) Tick() bool {
	now := time.Now()

	frameTime := now.Sub(p.lastTick)
	p.lastTick = now
	p.frames++
	if frameTime > p.worstFrame {
		p.worstFrame = frameTime
	}

	elapsed := now.Sub(p.lastReport)
	if elapsed < p.interval {
		return false
	}

	fps := float64(p.frames) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / (1 << 20)
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / (1 << 20) / elapsed.Seconds()
	gcRuns := p.memStats.NumGC - p.lastGCCount

	log.Printf("profiler: %.1f fps (worst %.2f ms) | heap %.1f MB | alloc %.2f MB/s | gc runs %d",
		fps, float64(p.worstFrame.Microseconds())/1000, heapMB, allocRateMB, gcRuns)

	p.frames = 0
	p.worstFrame = 0
	p.lastReport = now
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
