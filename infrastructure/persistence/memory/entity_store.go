// Package memory provides an in-memory entity store for development and
// tests. It mirrors the DynamoDB store's filtering semantics exactly.
package memory

import (
	"context"
	"sync"

	"clubgraph-backend/domain/club"

	"github.com/google/uuid"
)

// EntityStore holds clubs and connections in memory.
type EntityStore struct {
	mu          sync.RWMutex
	clubs       []club.Club
	connections []club.Connection
}

// NewEntityStore creates an empty in-memory store.
func NewEntityStore() *EntityStore {
	return &EntityStore{}
}

// Seed replaces the store contents. Entities without IDs get one assigned.
func (s *EntityStore) Seed(clubs []club.Club, connections []club.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clubs = append([]club.Club(nil), clubs...)
	for i := range s.clubs {
		if s.clubs[i].ID == "" {
			s.clubs[i].ID = uuid.NewString()
		}
	}

	s.connections = append([]club.Connection(nil), connections...)
	for i := range s.connections {
		if s.connections[i].ID == "" {
			s.connections[i].ID = uuid.NewString()
		}
	}
}

// ListClubs returns all clubs matching the filter.
func (s *EntityStore) ListClubs(ctx context.Context, filter club.Filter) ([]club.Club, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	clubs := make([]club.Club, 0, len(s.clubs))
	for _, c := range s.clubs {
		if !c.Active && !filter.IncludeInactive {
			continue
		}
		clubs = append(clubs, c)
	}
	return clubs, nil
}

// ListConnections returns all connections matching the filter.
func (s *EntityStore) ListConnections(ctx context.Context, filter club.Filter) ([]club.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	connections := make([]club.Connection, 0, len(s.connections))
	for _, c := range s.connections {
		if !c.Active && !filter.IncludeInactive {
			continue
		}
		connections = append(connections, c)
	}
	return connections, nil
}
