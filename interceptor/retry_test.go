package interceptor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stageflow/stageflow/models"
)

func TestRetryRetriesUpToMaxAttempts(t *testing.T) {
	r := NewRetry(0, 3)
	ictx := &InterceptorContext{Attempt: 0}

	res, err := r.OnError(context.Background(), ictx, errors.New("transient"))
	if err != nil {
		t.Fatalf("on_error: %v", err)
	}
	if res.Action != RetryStage {
		t.Fatalf("expected RetryStage on first failure, got %v", res.Action)
	}
}

func TestRetryPropagatesAfterMaxAttempts(t *testing.T) {
	r := NewRetry(0, 2)
	ictx := &InterceptorContext{Attempt: 1}

	res, err := r.OnError(context.Background(), ictx, errors.New("still failing"))
	if err != nil {
		t.Fatalf("on_error: %v", err)
	}
	if res.Action != Propagate {
		t.Fatalf("expected Propagate once attempts are exhausted, got %v", res.Action)
	}
}

// TestRetryTracksBackoffPerStage guards against one stage's failure history
// bleeding into another's: concurrent failures of "a" and "b" must be
// tracked under two separate per-stage policies rather than one shared curve.
func TestRetryTracksBackoffPerStage(t *testing.T) {
	r := NewRetry(0, 5)

	var wg sync.WaitGroup
	delays := make([]int64, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stage := "a"
			if i%2 == 1 {
				stage = "b"
			}
			ictx := &InterceptorContext{StageName: stage, Attempt: 0}
			res, err := r.OnError(context.Background(), ictx, errors.New("transient"))
			if err != nil {
				t.Errorf("on_error: %v", err)
				return
			}
			delays[i] = res.DelayMS
		}(i)
	}
	wg.Wait()

	if len(r.policies) != 2 {
		t.Fatalf("expected exactly 2 tracked stages, got %d", len(r.policies))
	}
}

// TestRetryAfterStageResetsBackoff confirms a stage's backoff state is
// cleared once it produces output, so a later failure of the same stage
// starts a fresh exponential curve instead of continuing a stale one.
func TestRetryAfterStageResetsBackoff(t *testing.T) {
	r := NewRetry(0, 5)
	ictx := &InterceptorContext{StageName: "flaky", Attempt: 0}

	if _, err := r.OnError(context.Background(), ictx, errors.New("transient")); err != nil {
		t.Fatalf("on_error: %v", err)
	}
	if len(r.policies) != 1 {
		t.Fatalf("expected a tracked policy after failure, got %d", len(r.policies))
	}

	if _, err := r.AfterStage(context.Background(), ictx, models.OK(nil)); err != nil {
		t.Fatalf("after_stage: %v", err)
	}
	if len(r.policies) != 0 {
		t.Fatalf("expected AfterStage to clear the stage's policy, got %d remaining", len(r.policies))
	}
}
