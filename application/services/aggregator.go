package services

import (
	"context"
	"time"

	"clubgraph-backend/application/ports"
	"clubgraph-backend/domain/club"
	"clubgraph-backend/domain/graph"
	pkgerrors "clubgraph-backend/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AggregateParams select which entities participate in a payload.
type AggregateParams struct {
	IncludeInactive bool
}

// CacheKey renders the parameters into a stable cache key under the
// graph-data key family.
func (p AggregateParams) CacheKey() string {
	if p.IncludeInactive {
		return "graph-data:includeInactive=true"
	}
	return "graph-data:includeInactive=false"
}

// Aggregator assembles visualization payloads from the entity store.
// It owns payload construction: size derivation, edge sanitation and
// metadata histograms all happen here, in one place.
type Aggregator struct {
	store  ports.EntityStore
	scale  func() graph.SizeScale
	now    func() time.Time
	logger *zap.Logger
}

// NewAggregator creates an aggregator. scale is read per assembly so the
// size constants can be retuned at runtime.
func NewAggregator(store ports.EntityStore, scale func() graph.SizeScale, logger *zap.Logger) *Aggregator {
	if scale == nil {
		scale = graph.DefaultSizeScale
	}
	return &Aggregator{
		store:  store,
		scale:  scale,
		now:    time.Now,
		logger: logger,
	}
}

// Assemble reads all qualifying clubs and connections in exactly two store
// queries, run in parallel, and derives the visualization payload. On any
// store failure it returns an aggregation error and no payload, so the
// request layer never caches a partial result.
func (a *Aggregator) Assemble(ctx context.Context, params AggregateParams) (*graph.Payload, error) {
	filter := club.Filter{IncludeInactive: params.IncludeInactive}

	var (
		clubs       []club.Club
		connections []club.Connection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clubs, err = a.store.ListClubs(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		connections, err = a.store.ListConnections(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		a.logger.Error("Entity store read failed during aggregation", zap.Error(err))
		return nil, pkgerrors.NewAggregationError(err)
	}

	payload := a.build(clubs, connections)

	a.logger.Debug("Assembled graph payload",
		zap.Int("nodeCount", payload.Metadata.NodeCount),
		zap.Int("edgeCount", payload.Metadata.EdgeCount),
		zap.Int("droppedEdges", payload.Metadata.DroppedEdges),
		zap.String("version", payload.Metadata.Version),
	)

	return payload, nil
}

// build transforms store rows into the node/edge payload. Edges that
// reference a missing club, loop back to their own club, or duplicate an
// already-seen (pair, type) key are dropped and counted rather than failing
// the whole payload.
func (a *Aggregator) build(clubs []club.Club, connections []club.Connection) *graph.Payload {
	nodeIndex := make(map[string]int, len(clubs))
	nodes := make([]graph.Node, 0, len(clubs))
	for _, c := range clubs {
		nodeIndex[c.ID] = len(nodes)
		nodes = append(nodes, graph.Node{
			ID:         c.ID,
			Label:      c.Name,
			Position:   graph.Position{X: c.X, Y: c.Y},
			Category:   c.League,
			Attributes: c.Attributes,
		})
	}

	edges := make([]graph.Edge, 0, len(connections))
	seen := make(map[string]struct{}, len(connections))
	degrees := make(map[string]int, len(clubs))
	dropped := 0

	for _, conn := range connections {
		edge := graph.Edge{
			ID:       conn.ID,
			SourceID: conn.SourceID,
			TargetID: conn.TargetID,
			Type:     string(conn.Type),
			Strength: conn.Strength,
			Label:    conn.Label,
		}

		_, sourceOK := nodeIndex[edge.SourceID]
		_, targetOK := nodeIndex[edge.TargetID]
		if !sourceOK || !targetOK || edge.SourceID == edge.TargetID {
			dropped++
			continue
		}

		key := edge.PairKey()
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}

		edges = append(edges, edge)
		degrees[edge.SourceID]++
		degrees[edge.TargetID]++
	}

	scale := a.scale()
	for i := range nodes {
		nodes[i].Size = scale.SizeFor(degrees[nodes[i].ID])
	}

	return &graph.Payload{
		Nodes:    nodes,
		Edges:    edges,
		Metadata: graph.NewMetadata(nodes, edges, dropped, a.now().UTC()),
	}
}
