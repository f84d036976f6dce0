package strata

import (
	"sort"
	"sync"
)

// Registry is an explicit, caller-owned set of named renderers for
// programs that drive several surfaces.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]*Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]*Renderer)}
}

// Register stores r under key, replacing any previous entry.
func (g *Registry) Register(key string, r *Renderer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.renderers[key] = r
}

// Get returns the renderer stored under key.
func (g *Registry) Get(key string) (*Renderer, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.renderers[key]
	return r, ok
}

// Unregister removes key. With dispose set the renderer is disposed too.
func (g *Registry) Unregister(key string, dispose bool) {
	g.mu.Lock()
	r := g.renderers[key]
	delete(g.renderers, key)
	g.mu.Unlock()
	if dispose && r != nil {
		r.Dispose()
	}
}

// Keys returns the registered keys in sorted order.
func (g *Registry) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	keys := make([]string, 0, len(g.renderers))
	for k := range g.renderers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
