// Package interceptor implements the priority-ordered middleware chain that
// wraps every stage execution with before_stage, after_stage and on_error
// hooks, plus the engine's bundled default interceptors.
package interceptor

import (
	"context"
	"time"

	"github.com/stageflow/stageflow/events"
	"github.com/stageflow/stageflow/models"
)

// BeforeAction is the verdict an interceptor's BeforeStage hook returns.
type BeforeAction int

const (
	// Continue lets the stage execute normally.
	Continue BeforeAction = iota
	// SkipStage short-circuits with a synthetic SKIP output.
	SkipStage
	// FailStage short-circuits with a synthetic FAIL output.
	FailStage
	// ReplaceStage short-circuits with a caller-supplied output, skipping
	// execution entirely.
	ReplaceStage
)

// BeforeResult is the outcome of a BeforeStage hook.
type BeforeResult struct {
	Action BeforeAction
	Reason string // for SkipStage
	Err    string // for FailStage
	Output models.StageOutput // for ReplaceStage
}

// ErrorAction is the verdict an interceptor's OnError hook returns.
type ErrorAction int

const (
	// Propagate lets the error abort the run as STAGE_EXECUTION_FAILED.
	Propagate ErrorAction = iota
	// RetryStage re-invokes the stage body after DelayMS.
	RetryStage
	// ReplaceOutput converts the error into a caller-supplied output.
	ReplaceOutput
)

// ErrorResult is the outcome of an OnError hook.
type ErrorResult struct {
	Action      ErrorAction
	DelayMS     int64
	MaxAttempts int
	Output      models.StageOutput
}

// InterceptorContext is what every hook receives: enough identity and
// run state to make a decision. after_stage may annotate Events/Artifacts
// only and must leave Data alone; Chain does not enforce this, so the rule
// rests on interceptor authors.
type InterceptorContext struct {
	StageName     string
	StageKind     models.StageKind
	PipelineRunID string
	ParentRunID   string
	Snapshot      models.ContextSnapshot
	Timer         *models.PipelineTimer
	Sink          events.Sink
	Inputs        models.StageInputs
	// Attempt is the 0-based retry attempt number for this invocation.
	Attempt int
}

// Interceptor is a named, priority-ordered middleware component. Lower
// Priority runs first in BeforeStage (Russian-doll: before in priority
// order outward, after in reverse); equal priority ties break by
// registration order.
type Interceptor interface {
	Name() string
	Priority() int
	BeforeStage(ctx context.Context, ictx *InterceptorContext) (BeforeResult, error)
	AfterStage(ctx context.Context, ictx *InterceptorContext, output models.StageOutput) (models.StageOutput, error)
	OnError(ctx context.Context, ictx *InterceptorContext, stageErr error) (ErrorResult, error)
}

// Base is embeddable by concrete interceptors that only need to override a
// subset of hooks; its defaults are identity/continue/propagate.
type Base struct {
	NameValue     string
	PriorityValue int
}

func (b Base) Name() string  { return b.NameValue }
func (b Base) Priority() int { return b.PriorityValue }

func (b Base) BeforeStage(context.Context, *InterceptorContext) (BeforeResult, error) {
	return BeforeResult{Action: Continue}, nil
}

func (b Base) AfterStage(_ context.Context, _ *InterceptorContext, output models.StageOutput) (models.StageOutput, error) {
	return output, nil
}

func (b Base) OnError(context.Context, *InterceptorContext, error) (ErrorResult, error) {
	return ErrorResult{Action: Propagate}, nil
}

// Deadliner is implemented by interceptors that want to bound a stage's
// execution time (the bundled Timeout interceptor does). The executor
// type-asserts the chain for it and applies the tightest deadline found,
// rather than hard-coding knowledge of any one interceptor.
type Deadliner interface {
	Deadline(stageName string) time.Duration
}

// sleepWithContext waits for d or ctx cancellation, whichever comes first.
func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
