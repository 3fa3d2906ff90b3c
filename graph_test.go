package stageflow

import (
	"testing"

	"github.com/stageflow/stageflow/models"
)

func TestStageGraphDependentsAndLayers(t *testing.T) {
	graph, err := New().
		WithStage("a", echoStage("a", "x", 1), models.KindTransform, nil, false).
		WithStage("b", echoStage("b", "y", 2), models.KindTransform, []string{"a"}, false).
		WithStage("c", echoStage("c", "z", 3), models.KindTransform, []string{"a"}, false).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	dependents := graph.Dependents("a")
	if len(dependents) != 2 {
		t.Fatalf("expected two dependents of a, got %v", dependents)
	}

	layers := graph.Layers()
	if len(layers) != 2 {
		t.Fatalf("expected two layers, got %v", layers)
	}
	if len(layers[0]) != 1 || layers[0][0] != "a" {
		t.Fatalf("expected first layer to be [a], got %v", layers[0])
	}
}

func TestStageGraphSpecLookup(t *testing.T) {
	graph, err := New().WithStage("only", echoStage("only", "x", 1), models.KindTransform, nil, false).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	spec, ok := graph.Spec("only")
	if !ok || spec.Name != "only" {
		t.Fatalf("expected to find spec for 'only', got %+v ok=%v", spec, ok)
	}
	if _, ok := graph.Spec("missing"); ok {
		t.Fatal("expected missing spec lookup to fail")
	}
}
