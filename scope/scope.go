// Package scope provides exactly-once resource cleanup for pipeline runs.
//
// A Scope collects cleanup functions registered while a pipeline runs. Each
// cleanup runs exactly once: either explicitly via Cleanup.Release (the
// normal completion path) or when the scope is closed (early abandonment or
// failure unwind). Close runs still-pending cleanups in reverse registration
// order, like a stack of defers.
//
// The conduit driver installs a Scope in the run's context; resource-owning
// stages register their release through Register so that every exit path,
// including ones the stage never sees, still releases.
package scope

import (
	"context"
	"errors"
	"sync"
)

// Cleanup is a registered cleanup function with an at-most-once guarantee.
// Release runs it explicitly; if the owning scope closes first, the scope
// runs it instead and a later Release is a no-op.
type Cleanup struct {
	mu   sync.Mutex
	fn   func(context.Context) error
	done bool
}

// Release runs the cleanup if it has not already run. Safe to call more than
// once; only the first call executes the function.
func (c *Cleanup) Release(ctx context.Context) error {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return nil
	}
	c.done = true
	fn := c.fn
	c.fn = nil
	c.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Released reports whether the cleanup has already run.
func (c *Cleanup) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Scope collects cleanups that must each run exactly once.
type Scope struct {
	mu       sync.Mutex
	cleanups []*Cleanup
	closed   bool
}

// New returns an empty scope.
func New() *Scope {
	return &Scope{}
}

// Defer registers fn with the scope and returns its Cleanup token. If the
// scope is already closed, fn is not registered and the token's Release runs
// it directly.
func (s *Scope) Defer(fn func(context.Context) error) *Cleanup {
	c := &Cleanup{fn: fn}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.cleanups = append(s.cleanups, c)
	}
	return c
}

// Close runs all still-pending cleanups in reverse registration order and
// marks the scope closed. Cleanups already run via Release are skipped.
// All cleanups are attempted; their errors are joined.
func (s *Scope) Close(ctx context.Context) error {
	s.mu.Lock()
	pending := s.cleanups
	s.cleanups = nil
	s.closed = true
	s.mu.Unlock()

	var errs []error
	for i := len(pending) - 1; i >= 0; i-- {
		if err := pending[i].Release(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type scopeKey struct{}

// WithScope returns a context carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope carried by ctx, if any.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok
}

// Register attaches fn to the scope carried by ctx. When ctx carries no
// scope, the returned Cleanup still guarantees at-most-once execution via
// Release, but nothing runs it on unwind; run under a driver that installs a
// scope to get the full guarantee.
func Register(ctx context.Context, fn func(context.Context) error) *Cleanup {
	if s, ok := FromContext(ctx); ok {
		return s.Defer(fn)
	}
	return &Cleanup{fn: fn}
}
