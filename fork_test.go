package stageflow

import (
	"testing"

	"github.com/stageflow/stageflow/models"
)

func TestForkInheritsReadOnlyParentData(t *testing.T) {
	parent := newTestContext(models.ContextSnapshot{PipelineRunID: "parent-run"})
	if err := parent.Bag.Write("upstream_value", 42, "upstream"); err != nil {
		t.Fatalf("seed parent bag: %v", err)
	}

	child := Fork(parent, "child-run", "forking-stage", "corr-1", nil, nil)

	if child.Snapshot.PipelineRunID != "child-run" {
		t.Fatalf("expected child run id, got %q", child.Snapshot.PipelineRunID)
	}
	if child.Parent == nil {
		t.Fatal("expected ParentLineage to be set")
	}
	if child.Parent.ParentRunID != "parent-run" {
		t.Fatalf("expected parent run id recorded, got %q", child.Parent.ParentRunID)
	}
	if got := child.Parent.ParentData.Get("upstream_value", nil); got != 42 {
		t.Fatalf("expected frozen view to see parent's bag contents, got %v", got)
	}
	if err := child.Parent.ParentData.Set("upstream_value", 99); err == nil {
		t.Fatal("expected write through frozen view to fail")
	}

	if child.Bag == parent.Bag {
		t.Fatal("expected child to get its own ContextBag")
	}
}

func TestForkCancellationIsLinkedToParent(t *testing.T) {
	parent := newTestContext(models.ContextSnapshot{PipelineRunID: "parent-run"})
	child := Fork(parent, "child-run", "stage", "corr", nil, nil)

	parent.Cancel()

	select {
	case <-child.Ctx.Done():
	default:
		t.Fatal("expected cancelling the parent to cancel the forked child")
	}
}

func TestForkOverridesTopologyAndExecutionMode(t *testing.T) {
	parent := newTestContext(models.ContextSnapshot{PipelineRunID: "parent-run", Topology: "fan_out", ExecutionMode: "sync"})
	topo := "single_stage"
	mode := "async"
	child := Fork(parent, "child-run", "stage", "corr", &topo, &mode)

	if child.Snapshot.Topology != "single_stage" || child.Snapshot.ExecutionMode != "async" {
		t.Fatalf("expected overridden topology/execution_mode, got %+v", child.Snapshot)
	}
}
