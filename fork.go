package stageflow

import (
	"context"

	"github.com/stageflow/stageflow/contextbag"
	"github.com/stageflow/stageflow/events"
	"github.com/stageflow/stageflow/models"
)

// Fork derives a child StageContext for a subpipeline run: a fresh
// ContextBag (writes never cross between parent and child), a cancellation
// context linked to the parent's (cancelling the parent drains every
// in-flight fork), and a frozen, read-only view of the parent's flattened
// data so the child can read upstream results without being able to write
// back into them.
//
// childRunID identifies the new run; parentStageID names the stage that
// initiated the fork; correlationID is recorded on the child's
// ParentLineage. The events Run emits do not include the correlation ID.
func Fork(parent *models.StageContext, childRunID, parentStageID, correlationID string, topology, executionMode *string) *models.StageContext {
	childCtx, cancel := context.WithCancel(parent.Ctx)

	snapshot := parent.Snapshot
	snapshot.PipelineRunID = childRunID
	if topology != nil {
		snapshot.Topology = *topology
	}
	if executionMode != nil {
		snapshot.ExecutionMode = *executionMode
	}

	var sink events.Sink = parent.Sink
	if sink == nil {
		sink = events.Ambient()
	}

	parentData := flattenBag(parent.Bag)

	return &models.StageContext{
		Snapshot: snapshot,
		Bag:      contextbag.New(),
		Sink:     sink,
		Ctx:      childCtx,
		Cancel:   cancel,
		Timer:    models.NewPipelineTimer(),
		Ports:    parent.Ports,
		Config:   parent.Config,
		Parent: &models.ParentLineage{
			ParentRunID:   parent.Snapshot.PipelineRunID,
			ParentStageID: parentStageID,
			CorrelationID: correlationID,
			ParentData:    models.NewFrozenView(parentData),
		},
	}
}

func flattenBag(bag *contextbag.Bag) map[string]any {
	flat := make(map[string]any)
	for _, key := range bag.Keys() {
		flat[key] = bag.Read(key, nil)
	}
	return flat
}
