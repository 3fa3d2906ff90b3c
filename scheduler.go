package stageflow

import (
	"sort"

	"github.com/stageflow/stageflow/models"
)

// scheduler tracks in-degree and resolved status for one Run invocation. It
// is not safe for concurrent use; the executor only ever touches it from the
// single goroutine draining resultCh.
type scheduler struct {
	graph *StageGraph

	indegree  map[string]int
	statusOf  map[string]models.StageStatus
	done      map[string]bool
	delivered map[string]bool // already returned from ready() or suppressed
}

func newScheduler(graph *StageGraph) *scheduler {
	indegree := make(map[string]int, len(graph.specs))
	for _, name := range graph.Names() {
		spec, _ := graph.Spec(name)
		indegree[name] = len(spec.Dependencies)
	}
	return &scheduler{
		graph:     graph,
		indegree:  indegree,
		statusOf:  map[string]models.StageStatus{},
		done:      map[string]bool{},
		delivered: map[string]bool{},
	}
}

// ready returns every stage whose in-degree is currently zero and that
// hasn't already been handed to the executor, sorted for determinism.
func (s *scheduler) ready() []string {
	var out []string
	for name, deg := range s.indegree {
		if deg == 0 && !s.delivered[name] {
			out = append(out, name)
			s.delivered[name] = true
		}
	}
	sort.Strings(out)
	return out
}

// complete records name's terminal status, decrements its dependents'
// in-degree, and cascades SKIP suppression to any non-Conditional dependent
// whose dependency set now includes an unusable (SKIP/CANCEL) result.
// It returns newly-ready stage names and any stages it suppressed outright.
func (s *scheduler) complete(name string, output models.StageOutput) (readyNames []string, suppressed map[string]models.StageOutput) {
	s.done[name] = true
	s.statusOf[name] = output.Status
	suppressed = map[string]models.StageOutput{}

	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		dependents := append([]string{}, s.graph.Dependents(cur)...)
		sort.Strings(dependents)

		for _, dep := range dependents {
			if s.delivered[dep] {
				continue
			}
			s.indegree[dep]--
			if s.indegree[dep] > 0 {
				continue
			}

			spec, _ := s.graph.Spec(dep)
			if !spec.Conditional && s.hasUnusableDependency(spec) {
				out := models.Skip("upstream_unavailable")
				s.delivered[dep] = true
				s.done[dep] = true
				s.statusOf[dep] = out.Status
				suppressed[dep] = out
				queue = append(queue, dep)
				continue
			}

			s.delivered[dep] = true
			readyNames = append(readyNames, dep)
		}
	}

	sort.Strings(readyNames)
	return readyNames, suppressed
}

func (s *scheduler) hasUnusableDependency(spec models.StageSpec) bool {
	for _, dep := range spec.Dependencies {
		switch s.statusOf[dep] {
		case models.StatusSkip, models.StatusCancel:
			return true
		}
	}
	return false
}

// unfinished lists every stage that never reached a terminal state. A
// non-empty result after the run's goroutines have all drained indicates a
// scheduling deadlock, which Build's cycle check should already have made
// unreachable in practice.
func (s *scheduler) unfinished() []string {
	var out []string
	for _, name := range s.graph.Names() {
		if !s.done[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
