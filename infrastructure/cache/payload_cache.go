// Package cache provides the in-memory payload cache for graph aggregation
// results, with sliding and absolute expiry, a per-key stampede guard, and
// generation-stamped invalidation.
package cache

import (
	"context"
	"sync"
	"time"

	"clubgraph-backend/domain/graph"

	"go.uber.org/zap"
)

// Reference entry lifetimes. Absolute expiry bounds staleness regardless of
// access; sliding expiry keeps hot entries alive between refreshes.
const (
	DefaultAbsoluteTTL = 5 * time.Minute
	DefaultSlidingTTL  = 2 * time.Minute
)

// Recorder receives cache telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	CacheHit()
	CacheMiss()
}

// PayloadCache memoizes graph payloads per aggregation-parameter key.
//
// Concurrency: a miss registers an in-flight record for its key; concurrent
// misses for the same key wait for that computation instead of starting a
// duplicate one. Invalidation bumps a generation counter; entries are stamped
// with the generation current when their computation started, so a compute
// that races an invalidation may still store its result, but the next read
// sees the stamp mismatch and recomputes.
type PayloadCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	flights map[string]*flight
	gen     uint64

	absoluteTTL func() time.Duration
	slidingTTL  func() time.Duration
	now         func() time.Time

	recorder Recorder
	logger   *zap.Logger
}

type entry struct {
	payload        *graph.Payload
	gen            uint64
	absoluteExpiry time.Time
	slidingExpiry  time.Time
}

type flight struct {
	done    chan struct{}
	payload *graph.Payload
	err     error
}

// Option configures a PayloadCache.
type Option func(*PayloadCache)

// WithTTL overrides the entry lifetimes. The functions are read per miss so
// the values can be retuned at runtime.
func WithTTL(absolute, sliding func() time.Duration) Option {
	return func(c *PayloadCache) {
		c.absoluteTTL = absolute
		c.slidingTTL = sliding
	}
}

// WithRecorder attaches a telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(c *PayloadCache) {
		c.recorder = r
	}
}

// NewPayloadCache creates an empty cache.
func NewPayloadCache(logger *zap.Logger, opts ...Option) *PayloadCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &PayloadCache{
		entries:     make(map[string]*entry),
		flights:     make(map[string]*flight),
		absoluteTTL: func() time.Duration { return DefaultAbsoluteTTL },
		slidingTTL:  func() time.Duration { return DefaultSlidingTTL },
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached payload for key, extending its sliding
// window, or computes and stores a fresh one. The returned bool reports a
// cache hit. Compute errors are never cached; the next request retries.
func (c *PayloadCache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (*graph.Payload, error)) (*graph.Payload, bool, error) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok && c.validLocked(e) {
		c.extendLocked(e)
		c.mu.Unlock()
		c.recordHit()
		return e.payload, true, nil
	}

	if f, ok := c.flights[key]; ok {
		c.mu.Unlock()
		c.recordMiss()
		select {
		case <-f.done:
			return f.payload, false, f.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	c.flights[key] = f
	startGen := c.gen
	c.mu.Unlock()
	c.recordMiss()

	payload, err := compute(ctx)

	c.mu.Lock()
	delete(c.flights, key)
	if err == nil {
		now := c.now()
		absolute := now.Add(c.absoluteTTL())
		sliding := now.Add(c.slidingTTL())
		if sliding.After(absolute) {
			sliding = absolute
		}
		c.entries[key] = &entry{
			payload:        payload,
			gen:            startGen,
			absoluteExpiry: absolute,
			slidingExpiry:  sliding,
		}
	}
	c.mu.Unlock()

	f.payload = payload
	f.err = err
	close(f.done)

	if err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

// Invalidate marks every entry stale. In-flight computations that started
// before the call may still store their result, but it will carry the old
// generation stamp and the next read recomputes.
func (c *PayloadCache) Invalidate() {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.logger.Info("Invalidated payload cache", zap.Uint64("generation", gen))
}

// Len reports the number of stored entries, valid or not. Intended for tests
// and diagnostics.
func (c *PayloadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *PayloadCache) validLocked(e *entry) bool {
	if e.gen != c.gen {
		return false
	}
	now := c.now()
	return now.Before(e.slidingExpiry) && now.Before(e.absoluteExpiry)
}

func (c *PayloadCache) extendLocked(e *entry) {
	sliding := c.now().Add(c.slidingTTL())
	if sliding.After(e.absoluteExpiry) {
		sliding = e.absoluteExpiry
	}
	e.slidingExpiry = sliding
}

func (c *PayloadCache) recordHit() {
	if c.recorder != nil {
		c.recorder.CacheHit()
	}
}

func (c *PayloadCache) recordMiss() {
	if c.recorder != nil {
		c.recorder.CacheMiss()
	}
}
