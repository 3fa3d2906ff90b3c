package stageflow

import (
	"testing"

	"github.com/stageflow/stageflow/models"
)

func buildTrivialGraph(t *testing.T) *StageGraph {
	t.Helper()
	graph, err := New().WithStage("noop", echoStage("noop", "x", 1), models.KindTransform, nil, false).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return graph
}

func TestRegistryRegisterGetList(t *testing.T) {
	reg := NewRegistry()
	graph := buildTrivialGraph(t)

	if err := reg.Register("greeter", graph, false); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := reg.Get("greeter")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != graph {
		t.Fatal("expected Get to return the registered graph")
	}
	if !reg.Has("greeter") {
		t.Fatal("expected Has to report true")
	}
	names := reg.List()
	if len(names) != 1 || names[0] != "greeter" {
		t.Fatalf("unexpected List result: %v", names)
	}
}

func TestRegistryRejectsDuplicateWithoutOverwrite(t *testing.T) {
	reg := NewRegistry()
	first := buildTrivialGraph(t)
	second := buildTrivialGraph(t)

	if err := reg.Register("greeter", first, false); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("greeter", second, false); err == nil {
		t.Fatal("expected conflicting registration to fail")
	}
	if err := reg.Register("greeter", second, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
	got, _ := reg.Get("greeter")
	if got != second {
		t.Fatal("expected overwrite to replace the stored graph")
	}
}

func TestRegistryReregisterSameGraphIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	graph := buildTrivialGraph(t)

	if err := reg.Register("greeter", graph, false); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("greeter", graph, false); err != nil {
		t.Fatalf("expected re-registering the same graph without overwrite to succeed, got %v", err)
	}
}

func TestRegistryGetMissingReturnsNotFound(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get("missing"); err == nil {
		t.Fatal("expected not-found error")
	}
}
