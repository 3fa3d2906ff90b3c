package stageflow

import (
	"testing"

	"github.com/stageflow/stageflow/models"
)

func specMap(names ...[2]string) (map[string]models.StageSpec, []string) {
	specs := map[string]models.StageSpec{}
	var order []string
	for _, pair := range names {
		name, dep := pair[0], pair[1]
		spec := specs[name]
		spec.Name = name
		if dep != "" {
			spec.Dependencies = append(spec.Dependencies, dep)
		}
		specs[name] = spec
		if !contains(order, name) {
			order = append(order, name)
		}
	}
	return specs, order
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func TestValidateEmptyPipeline(t *testing.T) {
	if err := validate(map[string]models.StageSpec{}, nil); err == nil {
		t.Fatal("expected EmptyPipelineError")
	}
}

func TestValidateMissingDependency(t *testing.T) {
	specs, order := specMap([2]string{"a", "ghost"})
	if err := validate(specs, order); err == nil {
		t.Fatal("expected MissingDependencyError")
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	specs, order := specMap([2]string{"a", "b"}, [2]string{"b", "a"})
	err := validate(specs, order)
	if err == nil {
		t.Fatal("expected CycleDetectedError")
	}
}

func TestValidateAcceptsDAG(t *testing.T) {
	specs, order := specMap([2]string{"a", ""}, [2]string{"b", "a"}, [2]string{"c", "b"})
	if err := validate(specs, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFindCycleIsDeterministic(t *testing.T) {
	specs, order := specMap([2]string{"x", "y"}, [2]string{"y", "z"}, [2]string{"z", "x"})
	cycle := findCycle(specs, order)
	if cycle == nil {
		t.Fatal("expected a cycle to be found")
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Fatalf("expected closed path, got %v", cycle)
	}
}
