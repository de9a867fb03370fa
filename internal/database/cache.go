// Package database owns the process-wide store connection.
package database

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"devevents/internal/domain"
)

// Dialer opens a connection handle for uri. It must return a usable,
// verified handle or an error.
type Dialer[C any] func(ctx context.Context, uri string) (C, error)

// Closer releases a handle on shutdown.
type Closer[C any] func(ctx context.Context, conn C) error

// Provider hands out the shared connection handle, connecting on first use.
type Provider[C any] interface {
	EnsureConnected(ctx context.Context) (C, error)
}

// Cache lazily establishes one connection handle and shares it for the life
// of the process. Concurrent callers share a single in-flight attempt; a
// failed attempt is forgotten so the next call dials again.
type Cache[C any] struct {
	uri    string
	dial   Dialer[C]
	close  Closer[C]
	logger *slog.Logger

	mu    sync.RWMutex
	conn  C
	ready bool

	group singleflight.Group
}

// NewCache returns a Cache for uri. Nothing is dialed until EnsureConnected.
func NewCache[C any](uri string, dial Dialer[C], closeFn Closer[C], logger *slog.Logger) *Cache[C] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[C]{uri: uri, dial: dial, close: closeFn, logger: logger}
}

// EnsureConnected returns the cached handle, dialing if none exists yet.
func (c *Cache[C]) EnsureConnected(ctx context.Context) (C, error) {
	if conn, ok := c.cached(); ok {
		return conn, nil
	}
	var zero C
	if c.uri == "" {
		return zero, domain.ErrMissingDatabaseURI
	}

	ch := c.group.DoChan("connect", func() (any, error) {
		if conn, ok := c.cached(); ok {
			return conn, nil
		}
		// The attempt is shared, so it must not die with the first caller.
		dialCtx := context.WithoutCancel(ctx)
		c.logger.Info("connecting to database", "scheme", uriScheme(c.uri))
		conn, err := c.dial(dialCtx, c.uri)
		if err != nil {
			wrapped := classifyDialError(c.uri, err)
			c.logger.Error("database connection failed", "err", wrapped)
			return nil, wrapped
		}
		c.mu.Lock()
		c.conn = conn
		c.ready = true
		c.mu.Unlock()
		c.logger.Info("database connection established")
		return conn, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(C), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close releases the cached handle, if any. Later calls to EnsureConnected
// dial again.
func (c *Cache[C]) Close(ctx context.Context) error {
	c.mu.Lock()
	conn, ready := c.conn, c.ready
	var zero C
	c.conn, c.ready = zero, false
	c.mu.Unlock()
	if !ready || c.close == nil {
		return nil
	}
	return c.close(ctx, conn)
}

func (c *Cache[C]) cached() (C, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn, c.ready
}
