// Package resilience decorates the entity store with a circuit breaker so a
// failing store sheds load quickly instead of stacking up slow aggregations.
package resilience

import (
	"context"
	"errors"
	"time"

	"clubgraph-backend/application/ports"
	"clubgraph-backend/domain/club"
	pkgerrors "clubgraph-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds circuit breaker settings for the entity store.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns settings tuned for a read-only store: trip on
// a sustained failure rate, recover after a minute.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerStore wraps an EntityStore with a shared circuit breaker. Both list
// operations feed the same breaker because they hit the same backend.
type BreakerStore struct {
	name    string
	inner   ports.EntityStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore creates a circuit-breaking entity store decorator.
func NewBreakerStore(inner ports.EntityStore, cfg BreakerConfig, logger *zap.Logger) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Entity store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &BreakerStore{
		name:    cfg.Name,
		inner:   inner,
		breaker: cb,
	}
}

// ListClubs delegates through the breaker.
func (s *BreakerStore) ListClubs(ctx context.Context, filter club.Filter) ([]club.Club, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.inner.ListClubs(ctx, filter)
	})
	if err != nil {
		return nil, s.wrapErr(err)
	}
	return result.([]club.Club), nil
}

// ListConnections delegates through the breaker.
func (s *BreakerStore) ListConnections(ctx context.Context, filter club.Filter) ([]club.Connection, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.inner.ListConnections(ctx, filter)
	})
	if err != nil {
		return nil, s.wrapErr(err)
	}
	return result.([]club.Connection), nil
}

// wrapErr marks shed requests as an unavailable dependency. Store errors
// pass through untouched so callers keep their original cause.
func (s *BreakerStore) wrapErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError(s.name).WithCause(err)
	}
	return err
}
