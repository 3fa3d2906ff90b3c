package interceptor

import (
	"context"
	"errors"
	"time"

	"github.com/stageflow/stageflow/models"
)

// Timeout wraps stage execution in a deadline. It does not itself invoke
// the stage: the executor reads Deadline and runs the stage under a
// context with that timeout. When the stage returns an error matching
// context.DeadlineExceeded, OnError converts it to FAIL(timeout); a stage
// that ignores its context is not interrupted. Because the chain's OnError
// stops at the first non-Propagate verdict, a converted timeout is not seen
// by later-ordered OnError hooks such as Retry's; CircuitBreaker still
// records the resulting FAIL output in AfterStage.
type Timeout struct {
	Base
	Default time.Duration
	PerStage map[string]time.Duration
}

// NewTimeout builds a Timeout interceptor with the given default deadline.
func NewTimeout(priority int, def time.Duration) *Timeout {
	return &Timeout{
		Base:     Base{NameValue: "timeout", PriorityValue: priority},
		Default:  def,
		PerStage: map[string]time.Duration{},
	}
}

// Deadline returns the configured timeout for stage, falling back to the
// interceptor's default.
func (t *Timeout) Deadline(stage string) time.Duration {
	if d, ok := t.PerStage[stage]; ok {
		return d
	}
	return t.Default
}

func (t *Timeout) OnError(_ context.Context, ictx *InterceptorContext, stageErr error) (ErrorResult, error) {
	if errors.Is(stageErr, context.DeadlineExceeded) {
		return ErrorResult{
			Action: ReplaceOutput,
			Output: models.Fail("timeout", nil).WithEvents(models.StageEvent{
				Type: "stage.timeout",
				Data: map[string]any{"stage": ictx.StageName},
			}),
		}, nil
	}
	return ErrorResult{Action: Propagate}, nil
}
