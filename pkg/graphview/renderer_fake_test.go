package graphview

import (
	"fmt"
	"sync"
	"time"

	"clubgraph-backend/domain/graph"
)

// fakeRenderer records every call so tests can assert on what the engine
// actually asked the backend to do.
type fakeRenderer struct {
	mu         sync.Mutex
	visibility []visibilityCall
	styles     []Style
	batches    []batchCall
}

type visibilityCall struct {
	nodes   []string
	edges   []string
	visible bool
}

type batchCall struct {
	nodes []graph.Node
	edges []graph.Edge
}

func (r *fakeRenderer) ApplyVisibility(nodeIDs, edgeIDs []string, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visibility = append(r.visibility, visibilityCall{
		nodes:   append([]string(nil), nodeIDs...),
		edges:   append([]string(nil), edgeIDs...),
		visible: visible,
	})
}

func (r *fakeRenderer) ApplyStyle(style Style) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles = append(r.styles, style)
}

func (r *fakeRenderer) InsertBatch(nodes []graph.Node, edges []graph.Edge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batchCall{
		nodes: append([]graph.Node(nil), nodes...),
		edges: append([]graph.Edge(nil), edges...),
	})
}

func (r *fakeRenderer) visibilityCalls() []visibilityCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]visibilityCall(nil), r.visibility...)
}

func (r *fakeRenderer) styleCalls() []Style {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Style(nil), r.styles...)
}

func (r *fakeRenderer) batchCalls() []batchCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]batchCall(nil), r.batches...)
}

func (r *fakeRenderer) insertedNodes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, b := range r.batches {
		total += len(b.nodes)
	}
	return total
}

// manualScheduler replaces the culler's timer so tests drive ticks by hand.
type manualScheduler struct {
	mu      sync.Mutex
	pending []scheduledTick
}

type scheduledTick struct {
	delay time.Duration
	fn    func()
}

func (s *manualScheduler) schedule(d time.Duration, fn func()) *time.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, scheduledTick{delay: d, fn: fn})
	return nil
}

// fire runs the oldest pending tick.
func (s *manualScheduler) fire() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	next := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()

	next.fn()
}

func (s *manualScheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// payloadOfSize builds a payload with n nodes on a diagonal line and a chain
// of n-1 edges.
func payloadOfSize(n int, generatedAt time.Time) *graph.Payload {
	nodes := make([]graph.Node, n)
	for i := range nodes {
		nodes[i] = graph.Node{
			ID:       fmt.Sprintf("n%d", i),
			Position: graph.Position{X: float64(i * 10), Y: float64(i * 10)},
		}
	}
	var edges []graph.Edge
	for i := 1; i < n; i++ {
		edges = append(edges, graph.Edge{
			ID:       fmt.Sprintf("e%d", i),
			SourceID: nodes[i-1].ID,
			TargetID: nodes[i].ID,
			Type:     "rivalry",
		})
	}
	return &graph.Payload{
		Nodes: nodes,
		Edges: edges,
		Metadata: graph.Metadata{
			NodeCount:   n,
			EdgeCount:   len(edges),
			GeneratedAt: generatedAt,
			Version:     graph.Version(n, len(edges), generatedAt),
		},
	}
}
