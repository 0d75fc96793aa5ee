package queries

import (
	"clubgraph-backend/application/services"
	"clubgraph-backend/domain/graph"
)

// GetGraphDataQuery requests the visualization payload for the club network.
type GetGraphDataQuery struct {
	IncludeInactive bool `json:"includeInactive"`
}

// Validate validates the query. Every parameter combination is currently
// legal; the method exists to satisfy the bus contract and to hold future
// parameter checks.
func (q GetGraphDataQuery) Validate() error {
	return nil
}

// Params maps the query onto aggregation parameters.
func (q GetGraphDataQuery) Params() services.AggregateParams {
	return services.AggregateParams{IncludeInactive: q.IncludeInactive}
}

// GetGraphDataResult is the payload plus the request-level telemetry the
// transport endpoint reports.
type GetGraphDataResult struct {
	Payload *graph.Payload

	// CacheHit reports whether the payload came from the cache.
	CacheHit bool

	// QueryCount is the number of entity store queries the request cost:
	// two on a miss (clubs, connections), zero on a hit.
	QueryCount int
}
