package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"clubgraph-backend/domain/club"
	pkgerrors "clubgraph-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingStore records how many store queries an assembly issues.
type countingStore struct {
	clubs       []club.Club
	connections []club.Connection
	clubErr     error
	connErr     error
	queries     atomic.Int64
}

func (s *countingStore) ListClubs(ctx context.Context, filter club.Filter) ([]club.Club, error) {
	s.queries.Add(1)
	if s.clubErr != nil {
		return nil, s.clubErr
	}
	out := make([]club.Club, 0, len(s.clubs))
	for _, c := range s.clubs {
		if !c.Active && !filter.IncludeInactive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *countingStore) ListConnections(ctx context.Context, filter club.Filter) ([]club.Connection, error) {
	s.queries.Add(1)
	if s.connErr != nil {
		return nil, s.connErr
	}
	out := make([]club.Connection, 0, len(s.connections))
	for _, c := range s.connections {
		if !c.Active && !filter.IncludeInactive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func testClubs() []club.Club {
	return []club.Club{
		{ID: "a", Name: "Alpha FC", League: "premier", Active: true, X: 10, Y: 20},
		{ID: "b", Name: "Beta United", League: "premier", Active: true, X: 30, Y: 40},
		{ID: "c", Name: "Gamma City", League: "championship", Active: true, X: 50, Y: 60},
		{ID: "d", Name: "Delta Town", League: "championship", Active: false, X: 70, Y: 80},
	}
}

func TestAssemble_BuildsPayload(t *testing.T) {
	store := &countingStore{
		clubs: testClubs(),
		connections: []club.Connection{
			{ID: "e1", SourceID: "a", TargetID: "b", Type: club.ConnectionRivalry, Strength: 5, Active: true},
			{ID: "e2", SourceID: "b", TargetID: "c", Type: club.ConnectionFriendship, Strength: 2, Active: true},
		},
	}
	agg := NewAggregator(store, nil, zap.NewNop())

	payload, err := agg.Assemble(context.Background(), AggregateParams{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), store.queries.Load(), "assembly must cost exactly two store queries")
	assert.Equal(t, 3, payload.Metadata.NodeCount, "inactive clubs excluded by default")
	assert.Equal(t, 2, payload.Metadata.EdgeCount)
	assert.Equal(t, 0, payload.Metadata.DroppedEdges)
	assert.NotEmpty(t, payload.Metadata.Version)

	sizes := make(map[string]float64)
	for _, n := range payload.Nodes {
		sizes[n.ID] = n.Size
	}
	assert.Equal(t, 25.0, sizes["a"], "degree 1")
	assert.Equal(t, 30.0, sizes["b"], "degree 2")
	assert.Equal(t, 25.0, sizes["c"], "degree 1")
}

func TestAssemble_IncludeInactive(t *testing.T) {
	store := &countingStore{clubs: testClubs()}
	agg := NewAggregator(store, nil, zap.NewNop())

	payload, err := agg.Assemble(context.Background(), AggregateParams{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, 4, payload.Metadata.NodeCount)
}

func TestAssemble_DropsBadEdges(t *testing.T) {
	store := &countingStore{
		clubs: testClubs(),
		connections: []club.Connection{
			{ID: "ok", SourceID: "a", TargetID: "b", Type: club.ConnectionRivalry, Active: true},
			{ID: "dangling", SourceID: "a", TargetID: "missing", Type: club.ConnectionRivalry, Active: true},
			{ID: "loop", SourceID: "b", TargetID: "b", Type: club.ConnectionRivalry, Active: true},
			{ID: "dup", SourceID: "b", TargetID: "a", Type: club.ConnectionRivalry, Active: true},
			{ID: "othertype", SourceID: "b", TargetID: "a", Type: club.ConnectionPartnership, Active: true},
			// References the inactive club, which is absent from the payload.
			{ID: "inactive-endpoint", SourceID: "a", TargetID: "d", Type: club.ConnectionRivalry, Active: true},
		},
	}
	agg := NewAggregator(store, nil, zap.NewNop())

	payload, err := agg.Assemble(context.Background(), AggregateParams{})
	require.NoError(t, err)

	assert.Equal(t, 2, payload.Metadata.EdgeCount,
		"only the valid edge and the distinct-type edge survive")
	assert.Equal(t, 4, payload.Metadata.DroppedEdges)

	kept := make(map[string]bool)
	for _, e := range payload.Edges {
		kept[e.ID] = true
	}
	assert.True(t, kept["ok"])
	assert.True(t, kept["othertype"])
}

func TestAssemble_StoreFailure(t *testing.T) {
	store := &countingStore{
		clubs:   testClubs(),
		connErr: errors.New("throttled"),
	}
	agg := NewAggregator(store, nil, zap.NewNop())

	payload, err := agg.Assemble(context.Background(), AggregateParams{})
	require.Error(t, err)
	assert.Nil(t, payload, "no partial payload on failure")
	assert.True(t, pkgerrors.IsAggregation(err))
}

func TestAssemble_EmptyStore(t *testing.T) {
	agg := NewAggregator(&countingStore{}, nil, zap.NewNop())

	payload, err := agg.Assemble(context.Background(), AggregateParams{})
	require.NoError(t, err)
	assert.Empty(t, payload.Nodes)
	assert.Empty(t, payload.Edges)
	assert.Equal(t, 0, payload.Metadata.DroppedEdges)
	assert.NotEmpty(t, payload.Metadata.Version, "empty payloads still carry a version token")
}

func TestAssemble_Idempotent(t *testing.T) {
	store := &countingStore{
		clubs: testClubs(),
		connections: []club.Connection{
			{ID: "e1", SourceID: "a", TargetID: "b", Type: club.ConnectionRivalry, Strength: 5, Active: true},
			{ID: "e2", SourceID: "b", TargetID: "c", Type: club.ConnectionFriendship, Strength: 2, Active: true},
		},
	}
	agg := NewAggregator(store, nil, zap.NewNop())

	first, err := agg.Assemble(context.Background(), AggregateParams{})
	require.NoError(t, err)
	second, err := agg.Assemble(context.Background(), AggregateParams{})
	require.NoError(t, err)

	// Same store contents, same parameters: identical nodes and edges.
	// Only the generation timestamp (and the version derived from it) may
	// differ between the two assemblies.
	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Edges, second.Edges)
	assert.Equal(t, first.Metadata.NodeCount, second.Metadata.NodeCount)
	assert.Equal(t, first.Metadata.EdgeCount, second.Metadata.EdgeCount)
	assert.Equal(t, first.Metadata.Categories, second.Metadata.Categories)
	assert.Equal(t, first.Metadata.EdgeTypes, second.Metadata.EdgeTypes)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "graph-data:includeInactive=false", AggregateParams{}.CacheKey())
	assert.Equal(t, "graph-data:includeInactive=true", AggregateParams{IncludeInactive: true}.CacheKey())
}
