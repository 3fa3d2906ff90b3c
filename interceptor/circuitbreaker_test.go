package interceptor

import (
	"context"
	"testing"
	"time"

	"github.com/stageflow/stageflow/models"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(0, 2, time.Minute)
	ictx := &InterceptorContext{StageName: "flaky"}

	for i := 0; i < 2; i++ {
		if _, err := cb.AfterStage(context.Background(), ictx, models.Fail("boom", nil)); err != nil {
			t.Fatalf("after_stage: %v", err)
		}
	}

	res, err := cb.BeforeStage(context.Background(), ictx)
	if err != nil {
		t.Fatalf("before_stage: %v", err)
	}
	if res.Action != FailStage {
		t.Fatalf("expected breaker open to fail fast, got %v", res.Action)
	}
}

func TestCircuitBreakerHalfOpensAfterCooldown(t *testing.T) {
	cb := NewCircuitBreaker(0, 1, time.Millisecond)
	ictx := &InterceptorContext{StageName: "flaky"}

	if _, err := cb.AfterStage(context.Background(), ictx, models.Fail("boom", nil)); err != nil {
		t.Fatalf("after_stage: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	res, err := cb.BeforeStage(context.Background(), ictx)
	if err != nil {
		t.Fatalf("before_stage: %v", err)
	}
	if res.Action != Continue {
		t.Fatalf("expected half-open probe to continue, got %v", res.Action)
	}
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(0, 1, time.Minute)
	ictx := &InterceptorContext{StageName: "flaky"}

	if _, err := cb.AfterStage(context.Background(), ictx, models.OK(nil)); err != nil {
		t.Fatalf("after_stage: %v", err)
	}
	res, err := cb.BeforeStage(context.Background(), ictx)
	if err != nil {
		t.Fatalf("before_stage: %v", err)
	}
	if res.Action != Continue {
		t.Fatalf("expected closed breaker to continue, got %v", res.Action)
	}
}
