package processor

import (
	"sort"
	"sync"

	"github.com/tigerroll/reimport/pkg/imports/support/util/logger"
)

// Factory creates a fresh ItemProcessor instance. The registry stores
// factories rather than instances so each batch run gets a processor free of
// state left behind by earlier runs.
type Factory func() ItemProcessor

// Registry maps item kinds to processor factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty processor registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to an item kind. Registering the same kind twice
// replaces the earlier factory.
func (r *Registry) Register(kind string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		logger.Warnf("Processor for kind '%s' is already registered; replacing it.", kind)
	}
	r.factories[kind] = factory
	logger.Debugf("Registered processor for kind '%s'.", kind)
}

// Get returns a new processor instance for the kind. The second return value
// is false when no factory is registered for the kind.
func (r *Registry) Get(kind string) (ItemProcessor, bool) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// Has reports whether a factory is registered for the kind.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
