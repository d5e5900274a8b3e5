package profiler

import (
	"runtime"

	"github.com/SakulFlee/Orbital-sub000/engine/logger"
)

// Profiler logs frame rate and memory statistics whenever the Timer completes a cycle.
type Profiler struct {
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	enabled        bool
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - enabled: when false, LogCycle is a no-op
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(enabled bool) *Profiler {
	return &Profiler{enabled: enabled}
}

// LogCycle writes one stats line for the completed cycle.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Parameters:
//   - c: the cycle returned by Timer.Tick, ignored when nil
func (p *Profiler) LogCycle(c *Cycle) {
	if !p.enabled || c == nil {
		return
	}

	fps := float64(c.Frames) / c.Elapsed

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / c.Elapsed

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		start := p.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	logger.Debugf("FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
