package stageflow

import (
	"sort"

	"github.com/stageflow/stageflow/models"
	"github.com/stageflow/stageflow/stageerrors"
)

// validate runs the three checks build() requires, in order, and is pure
// and deterministic given its input. specs must be keyed by name and order
// must list those names in a stable (registration) order, used to make
// cycle-detection's "lexicographically-first by starting node" guarantee
// actually mean "first in a deterministic, reported order" — we sort
// candidate start nodes lexicographically to break ties.
func validate(specs map[string]models.StageSpec, order []string) error {
	if len(specs) == 0 {
		return &stageerrors.EmptyPipelineError{}
	}

	for _, name := range order {
		spec := specs[name]
		for _, dep := range spec.Dependencies {
			if _, ok := specs[dep]; !ok {
				return &stageerrors.MissingDependencyError{Stage: name, Dependency: dep}
			}
		}
	}

	if cycle := findCycle(specs, order); cycle != nil {
		return &stageerrors.CycleDetectedError{Path: cycle}
	}

	return nil
}

// findCycle runs DFS coloring from every node, in lexicographic order of
// starting node, and returns the first cycle found (as a closed path
// v0...vk,v0), or nil if the graph is acyclic.
func findCycle(specs map[string]models.StageSpec, order []string) []string {
	starts := append([]string{}, order...)
	sort.Strings(starts)

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(specs))
	for _, name := range order {
		color[name] = white
	}

	var path []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		path = append(path, name)

		deps := append([]string{}, specs[name].Dependencies...)
		sort.Strings(deps)
		for _, dep := range deps {
			switch color[dep] {
			case white:
				if visit(dep) {
					return true
				}
			case gray:
				// Found a back-edge to dep; extract the cycle portion of
				// the current path starting at dep.
				start := indexOf(path, dep)
				cycle = append(append([]string{}, path[start:]...), dep)
				return true
			case black:
				// Already fully explored, no cycle through here.
			}
		}

		path = path[:len(path)-1]
		color[name] = black
		return false
	}

	for _, name := range starts {
		if color[name] == white {
			if visit(name) {
				return cycle
			}
		}
	}
	return nil
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
