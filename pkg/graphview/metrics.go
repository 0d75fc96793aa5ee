package graphview

import (
	"sync"
	"time"
)

// RenderMetrics is a point-in-time sample of render health. Ephemeral,
// sampled continuously, never persisted.
type RenderMetrics struct {
	FrameRate        float64
	MemoryEstimateMB float64
	LastRenderMs     float64
	VisibleNodes     int
	VisibleEdges     int
}

// Per-element memory cost estimates. The monitor derives its footprint from
// visible element counts, not heap introspection, so these only need to be
// stable, not exact.
const (
	nodeMemoryKB = 2.0
	edgeMemoryKB = 0.5
)

// How many frame timestamps the monitor keeps. Frame rate is estimated over
// this window.
const frameSampleWindow = 60

// Monitor estimates frame rate from render-callback timestamp deltas and
// tracks the duration of the last full render pass. It is the read-only
// feedback half of the mode-selection loop.
type Monitor struct {
	mu         sync.Mutex
	frames     []time.Time
	lastRender time.Duration
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		frames: make([]time.Time, 0, frameSampleWindow),
	}
}

// RecordFrame notes one render callback.
func (m *Monitor) RecordFrame(ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frames = append(m.frames, ts)
	if len(m.frames) > frameSampleWindow {
		m.frames = m.frames[len(m.frames)-frameSampleWindow:]
	}
}

// RecordRender notes the duration of a full render pass.
func (m *Monitor) RecordRender(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRender = d
}

// FrameRate estimates frames per second over the sample window. Zero until
// at least two frames have been recorded.
func (m *Monitor) FrameRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frameRateLocked()
}

func (m *Monitor) frameRateLocked() float64 {
	if len(m.frames) < 2 {
		return 0
	}
	elapsed := m.frames[len(m.frames)-1].Sub(m.frames[0]).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(len(m.frames)-1) / elapsed
}

// SustainedBelow reports whether the frame rate has stayed under fps for a
// full sample window. Used for opt-in adaptive degradation.
func (m *Monitor) SustainedBelow(fps float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.frames) < frameSampleWindow {
		return false
	}
	rate := m.frameRateLocked()
	return rate > 0 && rate < fps
}

// Snapshot builds a metrics sample for the given visible element counts.
func (m *Monitor) Snapshot(visibleNodes, visibleEdges int) RenderMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	return RenderMetrics{
		FrameRate:        m.frameRateLocked(),
		MemoryEstimateMB: (float64(visibleNodes)*nodeMemoryKB + float64(visibleEdges)*edgeMemoryKB) / 1024.0,
		LastRenderMs:     float64(m.lastRender.Microseconds()) / 1000.0,
		VisibleNodes:     visibleNodes,
		VisibleEdges:     visibleEdges,
	}
}
