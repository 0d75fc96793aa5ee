package graphview

import (
	"sync"
	"time"

	"clubgraph-backend/domain/graph"

	"go.uber.org/zap"
)

// Reference culling parameters.
const (
	DefaultCullMargin     = 100.0
	DefaultThrottleWindow = 200 * time.Millisecond
)

// Bounds is the currently visible rectangular region of the graph canvas,
// in world coordinates. Recomputed on every pan/zoom event, never persisted.
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
	Zoom float64
}

// Expand grows the bounds by margin on every side, to avoid pop-in at the
// viewport edge.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
		Zoom: b.Zoom,
	}
}

// Contains reports whether the position lies inside the bounds.
func (b Bounds) Contains(p graph.Position) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Partition splits the current element set by visibility.
type Partition struct {
	VisibleNodes []string
	HiddenNodes  []string
	VisibleEdges []string
	HiddenEdges  []string
}

// ComputePartition partitions a payload against the bounds expanded by
// margin. A node is visible iff its position lies inside the expanded
// bounds; an edge is visible iff at least one endpoint is visible.
func ComputePartition(payload *graph.Payload, bounds Bounds, margin float64) Partition {
	expanded := bounds.Expand(margin)

	var p Partition
	visible := make(map[string]bool, len(payload.Nodes))
	for _, n := range payload.Nodes {
		if expanded.Contains(n.Position) {
			visible[n.ID] = true
			p.VisibleNodes = append(p.VisibleNodes, n.ID)
		} else {
			p.HiddenNodes = append(p.HiddenNodes, n.ID)
		}
	}

	for _, e := range payload.Edges {
		if visible[e.SourceID] || visible[e.TargetID] {
			p.VisibleEdges = append(p.VisibleEdges, e.ID)
		} else {
			p.HiddenEdges = append(p.HiddenEdges, e.ID)
		}
	}

	return p
}

// Culler recomputes the visibility partition in response to viewport
// changes. Recomputation is throttled: requests within a window coalesce
// into a single pass on the next tick, so high-frequency pan/zoom events
// never trigger per-event recomputation. If a pass overruns its window the
// next one is deferred to the following tick rather than queued.
type Culler struct {
	store    *Store
	renderer Renderer
	logger   *zap.Logger

	mu        sync.Mutex
	margin    float64
	window    time.Duration
	enabled   bool
	pending   *Bounds
	scheduled bool
	running   bool
	lastRun   time.Time

	// schedule is swapped in tests to control tick timing.
	schedule func(d time.Duration, fn func()) *time.Timer
}

// CullerOption configures a Culler.
type CullerOption func(*Culler)

// WithCullMargin overrides the visibility margin.
func WithCullMargin(margin float64) CullerOption {
	return func(c *Culler) { c.margin = margin }
}

// WithThrottleWindow overrides the recomputation throttle window.
func WithThrottleWindow(window time.Duration) CullerOption {
	return func(c *Culler) { c.window = window }
}

// NewCuller creates a culling engine bound to the store and renderer.
func NewCuller(store *Store, renderer Renderer, logger *zap.Logger, opts ...CullerOption) *Culler {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Culler{
		store:    store,
		renderer: renderer,
		logger:   logger,
		margin:   DefaultCullMargin,
		window:   DefaultThrottleWindow,
		schedule: time.AfterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetEnabled turns culling on or off. Disabling restores every element to
// visible, as Standard mode requires.
func (c *Culler) SetEnabled(enabled bool) {
	c.mu.Lock()
	wasEnabled := c.enabled
	c.enabled = enabled
	c.pending = nil
	c.mu.Unlock()

	if wasEnabled && !enabled {
		c.showAll()
	}
}

// Request asks for a recomputation against the given bounds. Calls within
// the throttle window coalesce; the latest bounds win.
func (c *Culler) Request(bounds Bounds) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}

	c.pending = &bounds
	if c.scheduled {
		return
	}
	c.scheduled = true

	delay := c.window - time.Since(c.lastRun)
	if delay < 0 {
		delay = 0
	}
	c.schedule(delay, c.tick)
}

// tick runs one recomputation pass. If the previous pass is still running
// the window was overrun; the work is deferred to the next tick instead of
// piling up behind it.
func (c *Culler) tick() {
	c.mu.Lock()
	if c.running {
		c.schedule(c.window, c.tick)
		c.mu.Unlock()
		return
	}
	bounds := c.pending
	c.pending = nil
	c.scheduled = false
	if bounds == nil || !c.enabled {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	c.recompute(*bounds)

	c.mu.Lock()
	c.running = false
	c.lastRun = time.Now()
	reschedule := c.pending != nil && c.enabled && !c.scheduled
	if reschedule {
		c.scheduled = true
		c.schedule(c.window, c.tick)
	}
	c.mu.Unlock()
}

func (c *Culler) recompute(bounds Bounds) {
	payload := c.store.Payload()
	if payload == nil {
		return
	}

	start := time.Now()
	partition := ComputePartition(payload, bounds, c.margin)

	// Cheap state toggles, never structural removal.
	c.renderer.ApplyVisibility(partition.VisibleNodes, partition.VisibleEdges, true)
	c.renderer.ApplyVisibility(partition.HiddenNodes, partition.HiddenEdges, false)

	c.store.SetPartition(partition)

	if elapsed := time.Since(start); elapsed > c.window {
		c.logger.Debug("Culling pass overran throttle window",
			zap.Duration("elapsed", elapsed),
			zap.Duration("window", c.window),
		)
	}
}

// showAll marks the full element set visible.
func (c *Culler) showAll() {
	payload := c.store.Payload()
	if payload == nil {
		return
	}

	partition := Partition{
		VisibleNodes: make([]string, 0, len(payload.Nodes)),
		VisibleEdges: make([]string, 0, len(payload.Edges)),
	}
	for _, n := range payload.Nodes {
		partition.VisibleNodes = append(partition.VisibleNodes, n.ID)
	}
	for _, e := range payload.Edges {
		partition.VisibleEdges = append(partition.VisibleEdges, e.ID)
	}

	c.renderer.ApplyVisibility(partition.VisibleNodes, partition.VisibleEdges, true)
	c.store.SetPartition(partition)
}
