package stageflow

import (
	"sync"

	"github.com/stageflow/stageflow/stageerrors"
)

// Registry is a process-wide, concurrency-safe name -> *StageGraph store,
// the counterpart to package factory's stage-type registry but for whole
// compiled pipelines rather than individual stage types.
type Registry struct {
	mu    sync.RWMutex
	named map[string]*StageGraph
}

// NewRegistry builds an empty Registry. Most callers use the package-level
// DefaultRegistry instead of constructing their own.
func NewRegistry() *Registry {
	return &Registry{named: map[string]*StageGraph{}}
}

// DefaultRegistry is the ambient registry used by the package-level
// Register/Get/List/Has helpers.
var DefaultRegistry = NewRegistry()

// Register binds name to graph. Re-registering the exact same graph under
// a name it already owns is a no-op, whether or not overwrite is set:
// registration is idempotent per identity. A conflicting graph under an
// existing name fails with PipelineAlreadyRegisteredError unless overwrite
// is set.
func (r *Registry) Register(name string, graph *StageGraph, overwrite bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, exists := r.named[name]; exists {
		if existing == graph {
			return nil
		}
		if !overwrite {
			return &stageerrors.PipelineAlreadyRegisteredError{Name: name}
		}
	}
	r.named[name] = graph
	return nil
}

// Get returns the graph registered under name.
func (r *Registry) Get(name string) (*StageGraph, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	graph, ok := r.named[name]
	if !ok {
		return nil, &stageerrors.PipelineNotFoundError{Name: name}
	}
	return graph, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.named[name]
	return ok
}

// List returns every registered name, in no particular order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.named))
	for n := range r.named {
		names = append(names, n)
	}
	return names
}

// Register binds name to graph on the DefaultRegistry.
func Register(name string, graph *StageGraph, overwrite bool) error {
	return DefaultRegistry.Register(name, graph, overwrite)
}

// GetPipeline looks up name on the DefaultRegistry.
func GetPipeline(name string) (*StageGraph, error) {
	return DefaultRegistry.Get(name)
}

// ListPipelines lists every name registered on the DefaultRegistry.
func ListPipelines() []string {
	return DefaultRegistry.List()
}

// HasPipeline reports whether name is registered on the DefaultRegistry.
func HasPipeline(name string) bool {
	return DefaultRegistry.Has(name)
}
