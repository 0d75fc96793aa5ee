// Package graphview is the client-side graph engine: it holds the current
// payload in an observable store, partitions elements by viewport
// visibility, selects a performance mode from graph size, feeds batched
// inserts to the renderer, and samples render metrics.
//
// The package is renderer-agnostic. All rendering-library specifics sit
// behind the Renderer interface; the engine only ever issues cheap state
// toggles and batch inserts through it.
package graphview

import "clubgraph-backend/domain/graph"

// EffectsLevel trades visual fidelity for throughput.
type EffectsLevel int

const (
	EffectsFull EffectsLevel = iota
	EffectsReduced
	EffectsMinimal
)

// String returns the level name.
func (l EffectsLevel) String() string {
	switch l {
	case EffectsFull:
		return "full"
	case EffectsReduced:
		return "reduced"
	case EffectsMinimal:
		return "minimal"
	default:
		return "unknown"
	}
}

// Style is the renderer-facing visual configuration of a performance mode.
type Style struct {
	Effects        EffectsLevel
	ShowEdgeLabels bool
	AnimateLayout  bool
}

// Renderer is the minimal capability surface the engine needs from a
// rendering backend. Implementations must tolerate being called from the
// engine's goroutines; each call is expected to be cheap.
type Renderer interface {
	// ApplyVisibility flips the visibility flag on the given elements.
	// Elements are toggled, never structurally removed, so flipping back
	// is equally cheap.
	ApplyVisibility(nodeIDs, edgeIDs []string, visible bool)

	// ApplyStyle reconfigures the backend's visual effects.
	ApplyStyle(style Style)

	// InsertBatch materializes a batch of elements in the backend.
	// Edges in a batch only ever reference nodes inserted in this or an
	// earlier batch.
	InsertBatch(nodes []graph.Node, edges []graph.Edge)
}
