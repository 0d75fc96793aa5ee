package graphview

import (
	"context"

	"clubgraph-backend/domain/graph"

	"go.uber.org/zap"
)

// DefaultBatchSize is the reference lazy-loading batch size.
const DefaultBatchSize = 100

// LoadOptions tune one lazy load.
type LoadOptions struct {
	// InitialViewport, when set, orders nodes inside it ahead of the rest
	// so the first batches cover what the user is looking at. Ordering is
	// stable within each group. This is an optimization, not a contract;
	// insertion order of the payload is the baseline.
	InitialViewport *Bounds

	// Margin used with InitialViewport. Zero means no margin.
	Margin float64
}

// BatchLoader feeds a payload to the renderer in fixed-size batches so the
// first interactive frame is reachable before the full payload is
// materialized.
type BatchLoader struct {
	batchSize int
	renderer  Renderer
	logger    *zap.Logger
}

// NewBatchLoader creates a loader. A non-positive batchSize falls back to
// the default.
func NewBatchLoader(renderer Renderer, batchSize int, logger *zap.Logger) *BatchLoader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchLoader{
		batchSize: batchSize,
		renderer:  renderer,
		logger:    logger,
	}
}

// Load inserts the payload in batches and returns the number of batches
// emitted. Each batch carries its slice of nodes plus every not-yet-emitted
// edge whose endpoints are all materialized after the batch's nodes, so the
// renderer never sees a dangling edge. A canceled context stops between
// batches; already-inserted batches stay.
func (l *BatchLoader) Load(ctx context.Context, payload *graph.Payload, opts LoadOptions) (int, error) {
	nodes := payload.Nodes
	if opts.InitialViewport != nil {
		nodes = orderByViewport(nodes, *opts.InitialViewport, opts.Margin)
	}

	inserted := make(map[string]bool, len(nodes))
	emitted := make([]bool, len(payload.Edges))
	batches := 0

	for start := 0; start < len(nodes); start += l.batchSize {
		if err := ctx.Err(); err != nil {
			l.logger.Debug("Batch load canceled",
				zap.Int("batchesInserted", batches),
				zap.Int("nodesInserted", start),
			)
			return batches, err
		}

		end := start + l.batchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		batch := nodes[start:end]
		for _, n := range batch {
			inserted[n.ID] = true
		}

		var edges []graph.Edge
		for i, e := range payload.Edges {
			if emitted[i] {
				continue
			}
			if inserted[e.SourceID] && inserted[e.TargetID] {
				emitted[i] = true
				edges = append(edges, e)
			}
		}

		l.renderer.InsertBatch(batch, edges)
		batches++
	}

	return batches, nil
}

// orderByViewport stably partitions nodes into in-view and out-of-view
// groups, in-view first.
func orderByViewport(nodes []graph.Node, bounds Bounds, margin float64) []graph.Node {
	expanded := bounds.Expand(margin)

	ordered := make([]graph.Node, 0, len(nodes))
	var rest []graph.Node
	for _, n := range nodes {
		if expanded.Contains(n.Position) {
			ordered = append(ordered, n)
		} else {
			rest = append(rest, n)
		}
	}
	return append(ordered, rest...)
}
