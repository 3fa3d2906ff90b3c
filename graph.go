// Package stageflow implements the pipeline engine: an immutable DSL for
// declaring DAGs of stages (Pipeline/StageGraph), a scheduler that runs
// them with maximum concurrency (the DAG executor), and the machinery
// around it — interceptors, subpipeline forking, and a process registry.
package stageflow

import (
	"github.com/stageflow/stageflow/interceptor"
	"github.com/stageflow/stageflow/models"
)

// StageGraph is a compiled, validated pipeline, immutable after Build().
type StageGraph struct {
	specs []models.StageSpec
	byName map[string]models.StageSpec
	// dependents maps a stage name to the names of stages that declare it
	// as a dependency — the reverse adjacency the executor walks.
	dependents map[string][]string
	// layers is a topological layering of the graph, purely informational:
	// the executor schedules dynamically off in-degree, not off this field.
	layers [][]string

	interceptors []interceptor.Interceptor
}

// Names returns every stage name in registration order.
func (g *StageGraph) Names() []string {
	names := make([]string, len(g.specs))
	for i, s := range g.specs {
		names[i] = s.Name
	}
	return names
}

// Spec returns the compiled StageSpec for name.
func (g *StageGraph) Spec(name string) (models.StageSpec, bool) {
	s, ok := g.byName[name]
	return s, ok
}

// Dependents returns the stage names that declare name as a dependency.
func (g *StageGraph) Dependents(name string) []string {
	return append([]string{}, g.dependents[name]...)
}

// Layers returns the precomputed topological layering (informational).
func (g *StageGraph) Layers() [][]string {
	out := make([][]string, len(g.layers))
	for i, l := range g.layers {
		out[i] = append([]string{}, l...)
	}
	return out
}

// Interceptors returns the graph-bound interceptor chain. A per-run Run
// call may override this list entirely.
func (g *StageGraph) Interceptors() []interceptor.Interceptor {
	return append([]interceptor.Interceptor{}, g.interceptors...)
}

func computeLayers(specs []models.StageSpec) [][]string {
	remaining := make(map[string][]string, len(specs))
	for _, s := range specs {
		remaining[s.Name] = append([]string{}, s.Dependencies...)
	}

	var layers [][]string
	done := make(map[string]bool, len(specs))
	for len(done) < len(specs) {
		var layer []string
		for _, s := range specs {
			if done[s.Name] {
				continue
			}
			ready := true
			for _, dep := range remaining[s.Name] {
				if !done[dep] {
					ready = false
					break
				}
			}
			if ready {
				layer = append(layer, s.Name)
			}
		}
		if len(layer) == 0 {
			// Should be unreachable post-validation (cycle would have been
			// rejected by Build already); stop to avoid an infinite loop.
			break
		}
		for _, n := range layer {
			done[n] = true
		}
		layers = append(layers, layer)
	}
	return layers
}

func computeDependents(specs []models.StageSpec) map[string][]string {
	dependents := make(map[string][]string, len(specs))
	for _, s := range specs {
		for _, dep := range s.Dependencies {
			dependents[dep] = append(dependents[dep], s.Name)
		}
	}
	return dependents
}
