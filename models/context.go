package models

import (
	"context"
	"time"

	"github.com/stageflow/stageflow/contextbag"
	"github.com/stageflow/stageflow/events"
	"github.com/stageflow/stageflow/stageerrors"
)

// PipelineTimer is a monotonic clock shared by every stage of a single run,
// so stage durations are measured consistently regardless of which goroutine
// reads the clock.
type PipelineTimer struct {
	start time.Time
}

// NewPipelineTimer starts a timer at the current instant.
func NewPipelineTimer() *PipelineTimer {
	return &PipelineTimer{start: time.Now()}
}

// ElapsedMS returns milliseconds elapsed since the timer started.
func (t *PipelineTimer) ElapsedMS() int64 {
	return time.Since(t.start).Milliseconds()
}

// ParentLineage is present on a StageContext that was derived via Fork; it
// correlates the child run back to the stage and run that spawned it.
type ParentLineage struct {
	ParentRunID   string
	ParentStageID string
	CorrelationID string
	// ParentData is a frozen, read-only view over the parent run's flattened
	// ContextBag contents at fork time.
	ParentData *FrozenView
}

// StageContext is the per-run execution handle threaded through the
// executor and into every stage.
type StageContext struct {
	Snapshot ContextSnapshot
	Bag      *contextbag.Bag
	Sink     events.Sink

	// Ctx carries cancellation; the executor derives the per-stage context
	// from this field so cancelling it drains the whole run (and any forks).
	Ctx    context.Context
	Cancel context.CancelFunc

	Timer *PipelineTimer

	// Ports is the opaque capability bundle (persistence/LLM/audio/etc.)
	// forwarded to stages untouched. The engine never inspects it.
	Ports any

	// Config is free-form run configuration carried for stages. Run does not
	// read it; per-run interceptor overrides go through
	// ExecutorConfig.Interceptors.
	Config map[string]any

	Parent *ParentLineage
}

// NewStageContext builds a root (non-subrun) execution handle.
func NewStageContext(ctx context.Context, snapshot ContextSnapshot, sink events.Sink, ports any) *StageContext {
	if sink == nil {
		sink = events.Ambient()
	}
	runCtx, cancel := context.WithCancel(ctx)
	return &StageContext{
		Snapshot: snapshot,
		Bag:      contextbag.New(),
		Sink:     sink,
		Ctx:      runCtx,
		Cancel:   cancel,
		Timer:    NewPipelineTimer(),
		Ports:    ports,
		Config:   map[string]any{},
	}
}

// FrozenView is an immutable read-only view over another run's flattened
// output data, handed to subrun children. Any attempt to write through it
// is a contract violation — see stageerrors.ImmutableViewWriteError.
type FrozenView struct {
	data map[string]any
}

// NewFrozenView snapshots data into an immutable view.
func NewFrozenView(data map[string]any) *FrozenView {
	frozen := make(map[string]any, len(data))
	for k, v := range data {
		frozen[k] = v
	}
	return &FrozenView{data: frozen}
}

// Get reads key from the frozen parent data.
func (v *FrozenView) Get(key string, def any) any {
	if v == nil {
		return def
	}
	if val, ok := v.data[key]; ok {
		return val
	}
	return def
}

// Keys lists the keys available in the frozen view.
func (v *FrozenView) Keys() []string {
	if v == nil {
		return nil
	}
	keys := make([]string, 0, len(v.data))
	for k := range v.data {
		keys = append(keys, k)
	}
	return keys
}

// Set always fails: the view is read-only. Present for parity with the
// dynamic source's mutable dict, where a child stage could otherwise try to
// assign into parent data.
func (v *FrozenView) Set(key string, _ any) error {
	return &stageerrors.ImmutableViewWriteError{Key: key}
}
