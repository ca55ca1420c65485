// package profiler tracks frame rate and memory statistics for performance
// monitoring of the runtime's update loops.
package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger         *zap.Logger
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: the logger stats are written to, nil for a no-op logger
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		logger:         logger,
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Info("profiler tick",
		zap.Float64("fps", fps),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_rate_mb_s", allocRateMB),
		zap.Uint32("gc_count", gcCount),
		zap.Uint64("gc_last_pause_us", lastPauseUs),
		zap.Uint64("gc_max_pause_us", maxPauseUs),
		zap.Float64("sys_mb", sysMB),
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
