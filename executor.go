package stageflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/stageflow/stageflow/contextbag"
	"github.com/stageflow/stageflow/events"
	"github.com/stageflow/stageflow/interceptor"
	"github.com/stageflow/stageflow/models"
	"github.com/stageflow/stageflow/stageerrors"
)

// ExecutorConfig controls one Run invocation.
type ExecutorConfig struct {
	// ConcurrencyLimit caps how many stages may run at once. Zero (the
	// default) means unbounded.
	ConcurrencyLimit int
	// Interceptors, if non-nil, overrides the graph's bound interceptor
	// list for this run only.
	Interceptors []interceptor.Interceptor
}

// Outcome is the terminal result of a Run call.
type Outcome struct {
	// Status is OK, FAIL or CANCEL at the pipeline level.
	Status models.StageStatus
	// Results holds every stage that reached a terminal state, including
	// SKIP/suppressed stages. Present even on CANCEL (partial results).
	Results map[string]models.StageOutput
	// Err is set when Status == FAIL; it is a *stageerrors.StageExecutionError
	// or *stageerrors.DeadlockError.
	Err error
}

type stageResult struct {
	name   string
	output models.StageOutput
	err    error
}

// Run executes graph against sc with maximum concurrency: a stage launches
// as soon as every declared dependency has resolved usably. Run always
// returns a non-nil *Outcome; a Go error is only returned for programmer
// errors (nil graph/context).
func Run(ctx context.Context, graph *StageGraph, sc *models.StageContext, cfg ExecutorConfig) (*Outcome, error) {
	if graph == nil {
		return nil, fmt.Errorf("stageflow: Run called with a nil graph")
	}
	if sc == nil {
		return nil, fmt.Errorf("stageflow: Run called with a nil StageContext")
	}

	interceptors := graph.Interceptors()
	if cfg.Interceptors != nil {
		interceptors = cfg.Interceptors
	}
	chain := interceptor.NewChain(interceptors)

	runCtx := sc.Ctx
	if runCtx == nil {
		runCtx = ctx
	}

	sink := sc.Sink
	runID := sc.Snapshot.PipelineRunID
	events.Emit(sink, "pipeline.started", runID, nil)

	sched := newScheduler(graph)

	resultsMu := sync.Mutex{}
	results := make(map[string]models.StageOutput)
	recordResult := func(name string, out models.StageOutput) {
		resultsMu.Lock()
		results[name] = out
		resultsMu.Unlock()
	}
	priorOutputsFor := func(deps []string) map[string]models.StageOutput {
		resultsMu.Lock()
		defer resultsMu.Unlock()
		prior := make(map[string]models.StageOutput, len(deps))
		for _, dep := range deps {
			if out, ok := results[dep]; ok {
				prior[dep] = out
			}
		}
		return prior
	}

	var sem *semaphore.Weighted
	if cfg.ConcurrencyLimit > 0 {
		sem = semaphore.NewWeighted(int64(cfg.ConcurrencyLimit))
	}

	resultCh := make(chan stageResult)
	running := 0

	launch := func(name string) {
		running++
		go func() {
			if sem != nil {
				if err := sem.Acquire(runCtx, 1); err != nil {
					resultCh <- stageResult{name: name, output: models.Cancel("acquire_failed", nil)}
					return
				}
				defer sem.Release(1)
			}
			out, err := runStage(runCtx, graph, sc, chain, name, priorOutputsFor)
			resultCh <- stageResult{name: name, output: out, err: err}
		}()
	}

	for _, name := range sched.ready() {
		launch(name)
	}

	var failure *stageerrors.StageExecutionError
	var cancelled bool
	var cancelReason string

	for running > 0 {
		select {
		case <-runCtx.Done():
			if !cancelled && failure == nil {
				cancelled = true
				cancelReason = "context_cancelled"
			}
			for running > 0 {
				res := <-resultCh
				running--
				recordResult(res.name, res.output)
			}
		case res := <-resultCh:
			running--
			recordResult(res.name, res.output)

			switch res.output.Status {
			case models.StatusFail:
				if failure == nil {
					failure = &stageerrors.StageExecutionError{Stage: res.name, Original: res.err}
					if res.err == nil {
						failure.Original = fmt.Errorf("%s", res.output.Error)
					}
					sc.Cancel()
				}
			case models.StatusCancel:
				if !cancelled && failure == nil {
					cancelled = true
					cancelReason = res.output.Reason
					sc.Cancel()
				}
			}

			if failure == nil && !cancelled {
				newlyReady, suppressed := sched.complete(res.name, res.output)
				for sname, out := range suppressed {
					recordResult(sname, out)
					events.Emit(sink, "stage."+sname+".skipped", runID, map[string]any{
						"stage":  sname,
						"reason": out.Reason,
					})
				}
				for _, name := range newlyReady {
					launch(name)
				}
			}
		}
	}

	outcome := &Outcome{Results: results}
	switch {
	case failure != nil:
		outcome.Status = models.StatusFail
		outcome.Err = failure
		events.Emit(sink, "pipeline.failed", runID, map[string]any{
			"stage": failure.Stage,
			"error": failure.Error(),
		})
	case cancelled:
		outcome.Status = models.StatusCancel
		events.Emit(sink, "pipeline.cancelled", runID, map[string]any{
			"reason": cancelReason,
		})
	default:
		if unfinished := sched.unfinished(); len(unfinished) > 0 {
			dl := &stageerrors.DeadlockError{Unfinished: unfinished}
			outcome.Status = models.StatusFail
			outcome.Err = dl
			events.Emit(sink, "pipeline.failed", runID, map[string]any{
				"error": dl.Error(),
			})
			return outcome, nil
		}
		outcome.Status = models.StatusOK
		events.Emit(sink, "pipeline.completed", runID, map[string]any{
			"duration_ms": sc.Timer.ElapsedMS(),
		})
	}

	return outcome, nil
}

// runStage executes the full per-stage task pipeline: resolve inputs, emit
// started, run before_stage, execute (with retry), run after_stage, flatten
// an OK output to the bag, emit the terminal event.
func runStage(
	ctx context.Context,
	graph *StageGraph,
	sc *models.StageContext,
	chain *interceptor.Chain,
	name string,
	priorOutputsFor func([]string) map[string]models.StageOutput,
) (models.StageOutput, error) {
	spec, _ := graph.Spec(name)

	prior := priorOutputsFor(spec.Dependencies)
	inputs := models.NewStageInputs(sc.Snapshot, prior, spec.Dependencies, sc.Ports)

	ictx := &interceptor.InterceptorContext{
		StageName:     name,
		StageKind:     spec.Kind,
		PipelineRunID: sc.Snapshot.PipelineRunID,
		Snapshot:      sc.Snapshot,
		Timer:         sc.Timer,
		Sink:          sc.Sink,
		Inputs:        inputs,
	}
	if sc.Parent != nil {
		ictx.ParentRunID = sc.Parent.ParentRunID
	}

	events.Emit(sc.Sink, "stage."+name+".started", sc.Snapshot.PipelineRunID, map[string]any{
		"stage": name,
	})

	stageCtx := ctx
	if d := tightestDeadline(chain, name); d > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	output, finalErr := executeWithChain(stageCtx, chain, ictx, spec, sc, inputs)

	afterOutput, err := chain.After(stageCtx, ictx, output)
	if err == nil {
		output = afterOutput
	}

	if output.Status == models.StatusOK {
		output = flattenToBag(sc.Bag, name, output)
	}

	emitTerminal(sc, name, output)

	return output, finalErr
}

// executeWithChain runs before_stage, the stage body (retrying through
// on_error as directed), and returns the settled output plus the underlying
// Go error that aborts the pipeline on STAGE_EXECUTION_FAILED, if any.
// inputs is the declared-dependency-scoped view handed to the stage itself;
// ictx.Inputs carries the same data for interceptor use.
func executeWithChain(ctx context.Context, chain *interceptor.Chain, ictx *interceptor.InterceptorContext, spec models.StageSpec, sc *models.StageContext, inputs models.StageInputs) (models.StageOutput, error) {
	for attempt := 0; ; attempt++ {
		ictx.Attempt = attempt

		before, err := chain.Before(ctx, ictx)
		if err != nil {
			return models.Fail(err.Error(), nil), err
		}

		switch before.Action {
		case interceptor.SkipStage:
			return models.Skip(before.Reason), nil
		case interceptor.FailStage:
			return models.Fail(before.Err, nil), fmt.Errorf("%s", before.Err)
		case interceptor.ReplaceStage:
			return before.Output, nil
		}

		out, execErr := spec.Runner.Execute(ctx, sc, inputs)
		if execErr == nil {
			return out, nil
		}

		errRes, hookErr := chain.OnError(ctx, ictx, execErr)
		if hookErr != nil {
			return models.Fail(hookErr.Error(), nil), hookErr
		}

		switch errRes.Action {
		case interceptor.RetryStage:
			events.Emit(ictx.Sink, "stage."+ictx.StageName+".retried", ictx.PipelineRunID, map[string]any{
				"stage":   ictx.StageName,
				"attempt": attempt,
			})
			sleepWithContext(ctx, time.Duration(errRes.DelayMS)*time.Millisecond)
			continue
		case interceptor.ReplaceOutput:
			return errRes.Output, nil
		default:
			return models.Fail(execErr.Error(), nil), execErr
		}
	}
}

func flattenToBag(bag *contextbag.Bag, writer string, output models.StageOutput) models.StageOutput {
	for k, v := range output.Data {
		if err := bag.Write(k, v, writer); err != nil {
			conflict, _ := err.(*contextbag.ConflictError)
			msg := err.Error()
			if conflict != nil {
				msg = (&stageerrors.ContractConflictError{
					Key:     conflict.Key,
					Writer1: conflict.ExistingWriter,
					Writer2: conflict.NewWriter,
				}).Error()
			}
			return models.Fail(msg, output.Data)
		}
	}
	return output
}

func emitTerminal(sc *models.StageContext, name string, output models.StageOutput) {
	base := map[string]any{
		"stage":       name,
		"status":      string(output.Status),
		"duration_ms": sc.Timer.ElapsedMS(),
	}
	runID := sc.Snapshot.PipelineRunID
	switch output.Status {
	case models.StatusOK:
		events.Emit(sc.Sink, "stage."+name+".completed", runID, base)
	case models.StatusFail:
		base["error"] = output.Error
		events.Emit(sc.Sink, "stage."+name+".failed", runID, base)
	case models.StatusSkip:
		base["reason"] = output.Reason
		events.Emit(sc.Sink, "stage."+name+".skipped", runID, base)
	case models.StatusCancel:
		base["reason"] = output.Reason
		events.Emit(sc.Sink, "stage."+name+".cancelled", runID, base)
	}
}

func tightestDeadline(chain *interceptor.Chain, stage string) time.Duration {
	var tightest time.Duration
	for _, i := range chain.Ordered() {
		d, ok := i.(interceptor.Deadliner)
		if !ok {
			continue
		}
		if dl := d.Deadline(stage); dl > 0 && (tightest == 0 || dl < tightest) {
			tightest = dl
		}
	}
	return tightest
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
