package config

import (
	"fmt"
	"sync"

	"github.com/dcshock/conduit/conduit"
)

// Registry maps stage names to type-erased conduits. Safe for concurrent
// use. Register typed stages through conduit.Erase:
//
//	reg.Register("parse", conduit.Erase(httpstages.ParseJSON()))
type Registry struct {
	mu     sync.RWMutex
	stages map[string]conduit.Conduit[any, any]
}

// NewRegistry returns an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{stages: make(map[string]conduit.Conduit[any, any])}
}

// Register adds a stage under the given name. Overwrites any existing
// registration.
func (r *Registry) Register(name string, stage conduit.Conduit[any, any]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stages == nil {
		r.stages = make(map[string]conduit.Conduit[any, any])
	}
	r.stages[name] = stage
}

// Get returns the stage for name, or nil and false if not found.
func (r *Registry) Get(name string) (conduit.Conduit[any, any], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stages[name]
	return s, ok
}

// MustGet returns the stage for name, or panics if not found.
func (r *Registry) MustGet(name string) conduit.Conduit[any, any] {
	s, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("config: stage %q not registered", name))
	}
	return s
}

// Names returns all registered stage names (unordered).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stages))
	for n := range r.stages {
		names = append(names, n)
	}
	return names
}
