package graphview

import (
	"sync"
	"time"

	"clubgraph-backend/domain/graph"
)

// EventKind identifies which slice of store state changed.
type EventKind int

const (
	EventPayload EventKind = iota
	EventMode
	EventViewport
	EventVisibility
	EventMetrics
)

// Event is delivered to subscribers after a state change.
type Event struct {
	Kind EventKind
}

// Store is the client-side graph state container. It holds the current
// payload and all derived ephemeral state, and notifies subscribers through
// an explicit subscription mechanism; consumers register as observers
// rather than relying on implicit reactivity. None of this state is ever
// written back to the server.
type Store struct {
	mu        sync.RWMutex
	payload   *graph.Payload
	appliedAt time.Time
	mode      Mode
	bounds    Bounds
	partition Partition
	metrics   RenderMetrics

	subs    map[int]func(Event)
	nextSub int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		subs: make(map[int]func(Event)),
	}
}

// Subscribe registers an observer. The returned function unsubscribes it.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// ApplyPayload installs a payload unless it is stale. A payload generated
// no later than the one already applied is discarded: when responses arrive
// out of order the last request wins, never the first response.
func (s *Store) ApplyPayload(p *graph.Payload) bool {
	s.mu.Lock()
	if s.payload != nil && !p.Metadata.GeneratedAt.After(s.appliedAt) {
		s.mu.Unlock()
		return false
	}
	s.payload = p
	s.appliedAt = p.Metadata.GeneratedAt
	s.partition = Partition{}
	s.mu.Unlock()

	s.notify(Event{Kind: EventPayload})
	return true
}

// Payload returns the currently applied payload, or nil.
func (s *Store) Payload() *graph.Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payload
}

// SetMode records the active performance mode.
func (s *Store) SetMode(m Mode) {
	s.mu.Lock()
	changed := s.mode != m
	s.mode = m
	s.mu.Unlock()

	if changed {
		s.notify(Event{Kind: EventMode})
	}
}

// Mode returns the active performance mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetViewport records the active viewport bounds.
func (s *Store) SetViewport(b Bounds) {
	s.mu.Lock()
	s.bounds = b
	s.mu.Unlock()

	s.notify(Event{Kind: EventViewport})
}

// Viewport returns the active viewport bounds.
func (s *Store) Viewport() Bounds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bounds
}

// SetPartition records the current visibility partition.
func (s *Store) SetPartition(p Partition) {
	s.mu.Lock()
	s.partition = p
	s.mu.Unlock()

	s.notify(Event{Kind: EventVisibility})
}

// Partition returns the current visibility partition.
func (s *Store) Partition() Partition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partition
}

// SetMetrics records the latest render metrics sample.
func (s *Store) SetMetrics(m RenderMetrics) {
	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()

	s.notify(Event{Kind: EventMetrics})
}

// Metrics returns the latest render metrics sample.
func (s *Store) Metrics() RenderMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// notify delivers an event to every subscriber outside the state lock.
func (s *Store) notify(e Event) {
	s.mu.RLock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}
