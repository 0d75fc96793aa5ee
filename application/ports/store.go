package ports

import (
	"context"

	"clubgraph-backend/domain/club"
	"clubgraph-backend/domain/graph"
)

// EntityStore is the read-only port onto the relational club/connection
// storage owned by the CRUD layer. The aggregator's performance contract
// allows at most one call to each method per assembly.
type EntityStore interface {
	// ListClubs returns all clubs matching the filter.
	ListClubs(ctx context.Context, filter club.Filter) ([]club.Club, error)

	// ListConnections returns all connections matching the filter.
	ListConnections(ctx context.Context, filter club.Filter) ([]club.Connection, error)
}

// PayloadCache memoizes assembled payloads per aggregation-parameter key
// with read-through semantics. Implementations must guarantee at most one
// concurrent compute per key and treat Invalidate as a barrier: computes
// started before it may still store their result, but a later Get must
// detect the entry as stale and recompute.
type PayloadCache interface {
	// GetOrCompute returns the cached payload for key, or runs compute and
	// stores the result. The bool reports whether the payload was a cache hit.
	GetOrCompute(ctx context.Context, key string, compute func(context.Context) (*graph.Payload, error)) (*graph.Payload, bool, error)

	// Invalidate marks every cached entry stale. The CRUD layer calls this
	// on any club or connection mutation.
	Invalidate()
}
