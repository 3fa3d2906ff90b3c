package interceptor

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v5"
	"github.com/stageflow/stageflow/models"
)

// Retry implements the on_error `base * 2^attempt` + jitter policy using
// backoff/v5's exponential policy as the delay source — the executor is
// still the one that actually re-invokes the stage body (retrying is an
// executor-level control-flow concern, not something this hook can do on
// its own); this interceptor only decides WHETHER to retry and HOW LONG to
// wait before the next attempt.
//
// A run's stages execute concurrently once their dependencies are ready, so
// OnError/AfterStage for different stages can land on the same *Retry from
// different goroutines. Each stage gets its own *backoff.ExponentialBackOff,
// keyed by name and guarded by mu, so one stage's failure count never bleeds
// into another's.
type Retry struct {
	Base
	MaxAttempts int

	mu       sync.Mutex
	policies map[string]*backoff.ExponentialBackOff
}

// NewRetry builds a Retry interceptor bounded at maxAttempts, with delays
// following backoff/v5's exponential policy with its multiplier set to 2
// (500ms base, doubled per attempt, jittered, capped at 60s).
func NewRetry(priority, maxAttempts int) *Retry {
	return &Retry{
		Base:        Base{NameValue: "retry", PriorityValue: priority},
		MaxAttempts: maxAttempts,
		policies:    map[string]*backoff.ExponentialBackOff{},
	}
}

func (r *Retry) policyFor(stage string) *backoff.ExponentialBackOff {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.policies[stage]
	if !ok {
		p = backoff.NewExponentialBackOff()
		p.Multiplier = 2
		r.policies[stage] = p
	}
	return p
}

func (r *Retry) OnError(_ context.Context, ictx *InterceptorContext, _ error) (ErrorResult, error) {
	if ictx.Attempt+1 >= r.MaxAttempts {
		return ErrorResult{Action: Propagate}, nil
	}
	delay, err := r.policyFor(ictx.StageName).NextBackOff()
	if err != nil {
		return ErrorResult{Action: Propagate}, nil
	}
	return ErrorResult{
		Action:      RetryStage,
		DelayMS:     delay.Milliseconds(),
		MaxAttempts: r.MaxAttempts,
	}, nil
}

// AfterStage resets the stage's backoff policy once the stage settles on an
// output of any status (the executor calls it after the last attempt, FAIL
// included), so a later, unrelated failure of the same
// stage starts counting from attempt zero rather than continuing a stale
// exponential curve left over from an earlier failed run.
func (r *Retry) AfterStage(_ context.Context, ictx *InterceptorContext, output models.StageOutput) (models.StageOutput, error) {
	r.mu.Lock()
	delete(r.policies, ictx.StageName)
	r.mu.Unlock()
	return output, nil
}

// Reset clears every stage's backoff policy, for callers that want to reset
// the whole interceptor's state at once (e.g. between independent pipeline
// runs sharing a registered Retry instance).
func (r *Retry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, p := range r.policies {
		p.Reset()
		delete(r.policies, name)
	}
}
