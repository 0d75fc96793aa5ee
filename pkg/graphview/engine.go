package graphview

import (
	"context"
	"time"

	"clubgraph-backend/domain/graph"

	"go.uber.org/zap"
)

// Frame rate below which an adaptively-degrading engine steps down a mode.
const degradeFrameRate = 24.0

// Engine ties the store, culler, batch loader and monitor together behind
// one facade. The host application feeds it payloads, viewport ticks and
// render callbacks; it drives the renderer.
type Engine struct {
	store      *Store
	culler     *Culler
	loader     *BatchLoader
	monitor    *Monitor
	renderer   Renderer
	thresholds Thresholds
	logger     *zap.Logger

	// adaptive degradation is opt-in; the engine never changes fidelity
	// beyond the size table unless the host asked for it, and never
	// upgrades on its own.
	adaptive bool
	degraded bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThresholds overrides mode boundaries.
func WithThresholds(th Thresholds) EngineOption {
	return func(e *Engine) { e.thresholds = th }
}

// WithBatchSize overrides the lazy-loading batch size.
func WithBatchSize(size int) EngineOption {
	return func(e *Engine) { e.loader = NewBatchLoader(e.renderer, size, e.logger) }
}

// WithCullerOptions forwards options to the engine's culler.
func WithCullerOptions(opts ...CullerOption) EngineOption {
	return func(e *Engine) { e.culler = NewCuller(e.store, e.renderer, e.logger, opts...) }
}

// WithAdaptiveDegradation opts in to stepping the mode down when the frame
// rate stays low for a full sample window.
func WithAdaptiveDegradation() EngineOption {
	return func(e *Engine) { e.adaptive = true }
}

// NewEngine creates an engine around the given renderer.
func NewEngine(renderer Renderer, logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:      NewStore(),
		monitor:    NewMonitor(),
		renderer:   renderer,
		thresholds: DefaultThresholds(),
		logger:     logger,
	}
	e.culler = NewCuller(e.store, renderer, logger)
	e.loader = NewBatchLoader(renderer, DefaultBatchSize, logger)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the observable state container so hosts can subscribe.
func (e *Engine) Store() *Store {
	return e.store
}

// Load applies a payload: stale payloads are discarded (last request wins),
// fresh ones re-select the performance mode, reconfigure the renderer and
// materialize elements, batched in Ultra mode and in one pass otherwise.
// The returned bool reports whether the payload was applied.
func (e *Engine) Load(ctx context.Context, payload *graph.Payload) (bool, error) {
	if !e.store.ApplyPayload(payload) {
		e.logger.Debug("Discarded stale payload",
			zap.String("version", payload.Metadata.Version),
			zap.Time("generatedAt", payload.Metadata.GeneratedAt),
		)
		return false, nil
	}

	mode := SelectMode(len(payload.Nodes), e.thresholds)
	e.degraded = false
	e.applyMode(mode)

	cfg := mode.Config()
	if cfg.LazyLoading {
		viewport := e.store.Viewport()
		batches, err := e.loader.Load(ctx, payload, LoadOptions{
			InitialViewport: &viewport,
			Margin:          e.culler.margin,
		})
		if err != nil {
			return true, err
		}
		e.logger.Info("Loaded payload in batches",
			zap.String("mode", mode.String()),
			zap.Int("batches", batches),
			zap.Int("nodeCount", len(payload.Nodes)),
		)
	} else {
		e.renderer.InsertBatch(payload.Nodes, payload.Edges)
	}

	return true, nil
}

// SetViewport records a pan/zoom tick and requests a (throttled) culling
// recomputation.
func (e *Engine) SetViewport(b Bounds) {
	e.store.SetViewport(b)
	e.culler.Request(b)
}

// RecordFrame notes one render callback and, when adaptive degradation is
// enabled, steps the mode down if the frame rate has stayed low. The engine
// never steps back up on its own.
func (e *Engine) RecordFrame(ts time.Time) {
	e.monitor.RecordFrame(ts)

	if !e.adaptive || e.degraded {
		return
	}
	if !e.monitor.SustainedBelow(degradeFrameRate) {
		return
	}

	current := e.store.Mode()
	if current >= ModeUltra {
		return
	}
	next := current + 1
	e.degraded = true
	e.logger.Info("Degrading performance mode on sustained low frame rate",
		zap.String("from", current.String()),
		zap.String("to", next.String()),
		zap.Float64("frameRate", e.monitor.FrameRate()),
	)
	e.applyMode(next)
}

// RecordRender notes the duration of a full render pass.
func (e *Engine) RecordRender(d time.Duration) {
	e.monitor.RecordRender(d)
}

// Metrics samples the current render metrics and publishes them on the
// store.
func (e *Engine) Metrics() RenderMetrics {
	partition := e.store.Partition()
	m := e.monitor.Snapshot(len(partition.VisibleNodes), len(partition.VisibleEdges))
	e.store.SetMetrics(m)
	return m
}

func (e *Engine) applyMode(mode Mode) {
	e.store.SetMode(mode)
	cfg := mode.Config()
	e.renderer.ApplyStyle(cfg.Style)
	e.culler.SetEnabled(cfg.CullingEnabled)
	if cfg.CullingEnabled {
		e.culler.Request(e.store.Viewport())
	}
}
