// Package cache memoizes analysis results per key for the lifetime of a session.
//
// A value is computed at most once per key: requests arriving while a computation
// is in flight wait for it and share its result, and completed values are
// returned without recomputation until the Cache is closed.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrClosed is returned to every waiter once the owning session is torn down
	ErrClosed = errors.New("cache closed")
	// ErrComputePanicked is returned to every waiter of a computation that panicked
	ErrComputePanicked = errors.New("computation panicked")
)

type Cache[K ~string, V any] struct {
	mu   sync.RWMutex
	done map[K]V

	group singleflight.Group

	// ctx is handed to computations, and is cancelled by Close
	ctx    context.Context
	cancel context.CancelCauseFunc

	logger *slog.Logger

	hits         atomic.Uint64
	computations atomic.Uint64
	joins        atomic.Uint64
}

type Stats struct {
	// Hits counts requests answered from completed values
	Hits uint64
	// Computations counts how many times a compute function actually ran
	Computations uint64
	// Joins counts requests that waited on a computation started by another request
	Joins uint64
}

func New[K ~string, V any](logger *slog.Logger) *Cache[K, V] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Cache[K, V]{
		done:   make(map[K]V),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With("section", "cache"),
	}
}

// Get returns the completed value for key, if there is one
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.done[key]
	return v, ok
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.done)
}

func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Computations: c.computations.Load(),
		Joins:        c.joins.Load(),
	}
}

// GetOrCompute returns the value stored for key, computing it with compute if
// there is none yet. Concurrent calls for the same key share a single computation.
//
// compute receives the Cache's own context rather than ctx, because its result
// is shared with other callers. Cancelling ctx only releases this caller.
// Errors are returned to every waiter but are not stored.
func (c *Cache[K, V]) GetOrCompute(ctx context.Context, key K, compute func(ctx context.Context) (V, error)) (V, error) {
	var zero V
	if c.ctx.Err() != nil {
		return zero, errors.Wrapf(ErrClosed, "requesting %s", key)
	}
	if v, ok := c.Get(key); ok {
		c.hits.Add(1)
		return v, nil
	}

	// only set when this request's function is the one singleflight runs
	var leader atomic.Bool
	ch := c.group.DoChan(string(key), func() (any, error) {
		leader.Store(true)
		// a flight for key may have completed between our Get and DoChan
		if v, ok := c.Get(key); ok {
			c.hits.Add(1)
			return v, nil
		}
		c.computations.Add(1)
		v, err := c.run(key, compute)
		if err != nil {
			return zero, err
		}
		c.mu.Lock()
		c.done[key] = v
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		if !leader.Load() {
			c.joins.Add(1)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, errors.Wrapf(ctx.Err(), "waiting for %s", key)
	case <-c.ctx.Done():
		return zero, errors.Wrapf(ErrClosed, "waiting for %s", key)
	}
}

func (c *Cache[K, V]) run(key K, compute func(ctx context.Context) (V, error)) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("computation panicked", "key", key, "panic", r)
			err = errors.Wrapf(ErrComputePanicked, "computing %s: %v", key, r)
		}
	}()
	return compute(c.ctx)
}

// Close releases every waiter with ErrClosed and makes further requests fail.
// Completed values are dropped.
func (c *Cache[K, V]) Close() {
	c.cancel(ErrClosed)
	c.mu.Lock()
	clear(c.done)
	c.mu.Unlock()
}

// Context is done once the Cache is closed
func (c *Cache[K, V]) Context() context.Context {
	return c.ctx
}
