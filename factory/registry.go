// Package factory is the process-wide registry of stage types: a name maps
// to either a models.StageFactory (invoked fresh per run) or a bound
// models.Stage instance (shared across runs, so it must tolerate concurrent
// invocation).
package factory

import (
	"sync"

	"github.com/stageflow/stageflow/models"
	"github.com/stageflow/stageflow/stageerrors"
)

type registration struct {
	fn       models.StageFactory
	instance models.Stage
}

var (
	mu       sync.RWMutex
	registry = make(map[string]registration)
)

// RegisterFactory binds stageType to a factory invoked once per resolution.
// A later call with the same stageType overwrites the earlier registration.
func RegisterFactory(stageType string, fn models.StageFactory) {
	mu.Lock()
	defer mu.Unlock()
	registry[stageType] = registration{fn: fn}
}

// RegisterInstance binds stageType to a single shared Stage instance,
// returned unchanged by every Resolve call. The instance must be safe for
// concurrent Execute calls across runs.
func RegisterInstance(stageType string, stage models.Stage) {
	mu.Lock()
	defer mu.Unlock()
	registry[stageType] = registration{instance: stage}
}

// Resolve builds (or returns) the Stage registered under stageType. config
// is only consulted when stageType maps to a factory.
func Resolve(stageType string, config map[string]any) (models.Stage, error) {
	mu.RLock()
	reg, ok := registry[stageType]
	mu.RUnlock()
	if !ok {
		return nil, &stageerrors.StageFactoryNotFoundError{Type: stageType}
	}
	if reg.instance != nil {
		return reg.instance, nil
	}
	return reg.fn(config)
}

// List returns every registered stage type, in no particular order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	return types
}

// Has reports whether stageType is registered.
func Has(stageType string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[stageType]
	return ok
}
