// Package profiler reports frame rate, accumulation progress and memory statistics at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/reactor/log"
)

// Stats is one profiler report.
type Stats struct {
	FPS float64
	// Progress is the accumulated fraction of the sample budget at the time of the report.
	Progress float32
	// Samples is the per-pixel sample count at the time of the report.
	Samples     uint32
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	// LastPauseUs and MaxPauseUs are GC pauses in microseconds since the previous report.
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	logger         log.Logger
	now            func() time.Time
	last           Stats
}

// NewProfiler creates a Profiler reporting once per interval. A non-positive interval means one second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		logger:         log.New("profiler"),
		now:            time.Now,
	}
}

// Tick records one frame and logs a report when the interval has elapsed.
//
// Parameters:
//   - progress: the renderer's accumulation progress
//   - samples: the renderer's accumulated samples per pixel
//
// Returns:
//   - bool: true if a report was logged this tick
func (p *Profiler) Tick(progress float32, samples uint32) bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:      float64(p.frameCount) / elapsed.Seconds(),
		Progress: progress,
		Samples:  samples,
		HeapMB:   float64(p.memStats.Alloc) / 1024 / 1024,
		GCCount:  p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	p.logger.Infof("FPS: %.2f | Samples: %d (%.1f%%) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs)",
		s.FPS, s.Samples, 100*s.Progress, s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPauseUs, s.MaxPauseUs)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.last = s
	return true
}

// Last returns the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}
