package graphview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameRate_FromTimestampDeltas(t *testing.T) {
	m := NewMonitor()
	assert.Zero(t, m.FrameRate(), "no estimate before two frames")

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.RecordFrame(t0)
	assert.Zero(t, m.FrameRate())

	// Frames 100ms apart: 10 fps.
	m.RecordFrame(t0.Add(100 * time.Millisecond))
	assert.InDelta(t, 10.0, m.FrameRate(), 0.001)

	m.RecordFrame(t0.Add(200 * time.Millisecond))
	assert.InDelta(t, 10.0, m.FrameRate(), 0.001)
}

func TestFrameRate_WindowSlides(t *testing.T) {
	m := NewMonitor()
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// A slow stretch followed by a fast one: the estimate follows the
	// window, not all of history.
	for i := 0; i < frameSampleWindow; i++ {
		m.RecordFrame(t0.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	assert.InDelta(t, 10.0, m.FrameRate(), 0.001)

	last := t0.Add(time.Duration(frameSampleWindow-1) * 100 * time.Millisecond)
	for i := 1; i <= frameSampleWindow; i++ {
		m.RecordFrame(last.Add(time.Duration(i) * 16 * time.Millisecond))
	}
	assert.InDelta(t, 62.5, m.FrameRate(), 0.001)
}

func TestSustainedBelow_NeedsFullWindow(t *testing.T) {
	m := NewMonitor()
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// 10 fps but only half a window of samples: not sustained yet.
	for i := 0; i < frameSampleWindow/2; i++ {
		m.RecordFrame(t0.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	assert.False(t, m.SustainedBelow(24))

	for i := frameSampleWindow / 2; i < frameSampleWindow; i++ {
		m.RecordFrame(t0.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	assert.True(t, m.SustainedBelow(24))
	assert.False(t, m.SustainedBelow(5), "10 fps is not below 5")
}

func TestSnapshot_MemoryEstimateFromCounts(t *testing.T) {
	m := NewMonitor()
	m.RecordRender(42 * time.Millisecond)

	s := m.Snapshot(1000, 500)

	// 1000 nodes * 2KB + 500 edges * 0.5KB = 2250KB.
	assert.InDelta(t, 2250.0/1024.0, s.MemoryEstimateMB, 0.0001)
	assert.InDelta(t, 42.0, s.LastRenderMs, 0.0001)
	assert.Equal(t, 1000, s.VisibleNodes)
	assert.Equal(t, 500, s.VisibleEdges)
}
