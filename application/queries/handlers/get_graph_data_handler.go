package handlers

import (
	"context"

	"clubgraph-backend/application/ports"
	"clubgraph-backend/application/queries"
	"clubgraph-backend/application/services"
	"clubgraph-backend/domain/graph"
	pkgerrors "clubgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// Number of entity store queries one assembly costs. The aggregator's
// two-query bound is a performance contract, surfaced to clients as
// telemetry.
const queriesPerAssembly = 2

// GetGraphDataHandler serves graph visualization payloads through the
// read-through cache.
type GetGraphDataHandler struct {
	cache      ports.PayloadCache
	aggregator *services.Aggregator
	logger     *zap.Logger
}

// NewGetGraphDataHandler creates a new graph data handler
func NewGetGraphDataHandler(cache ports.PayloadCache, aggregator *services.Aggregator, logger *zap.Logger) *GetGraphDataHandler {
	return &GetGraphDataHandler{
		cache:      cache,
		aggregator: aggregator,
		logger:     logger,
	}
}

// Handle executes the graph data query. On a cache hit the entity store is
// not touched at all; on a miss exactly one aggregation runs, even under
// concurrent requests for the same parameters.
func (h *GetGraphDataHandler) Handle(ctx context.Context, query queries.GetGraphDataQuery) (*queries.GetGraphDataResult, error) {
	params := query.Params()

	payload, hit, err := h.cache.GetOrCompute(ctx, params.CacheKey(), func(ctx context.Context) (*graph.Payload, error) {
		return h.aggregator.Assemble(ctx, params)
	})
	if err != nil {
		h.logger.Error("Failed to get graph data",
			zap.Bool("includeInactive", query.IncludeInactive),
			zap.Error(err),
		)
		return nil, pkgerrors.Wrap(err, "get graph data")
	}

	queryCount := 0
	if !hit {
		queryCount = queriesPerAssembly
	}

	return &queries.GetGraphDataResult{
		Payload:    payload,
		CacheHit:   hit,
		QueryCount: queryCount,
	}, nil
}
