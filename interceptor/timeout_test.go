package interceptor

import (
	"context"
	"testing"
	"time"
)

func TestTimeoutDeadlineFallsBackToDefault(t *testing.T) {
	to := NewTimeout(0, 5*time.Second)
	to.PerStage["slow"] = 30 * time.Second

	if to.Deadline("slow") != 30*time.Second {
		t.Fatalf("expected per-stage override, got %v", to.Deadline("slow"))
	}
	if to.Deadline("other") != 5*time.Second {
		t.Fatalf("expected default, got %v", to.Deadline("other"))
	}
}

func TestTimeoutOnErrorConvertsDeadlineExceeded(t *testing.T) {
	to := NewTimeout(0, time.Millisecond)
	res, err := to.OnError(context.Background(), &InterceptorContext{StageName: "slow"}, context.DeadlineExceeded)
	if err != nil {
		t.Fatalf("on_error: %v", err)
	}
	if res.Action != ReplaceOutput {
		t.Fatalf("expected ReplaceOutput, got %v", res.Action)
	}
	if res.Output.Error != "timeout" {
		t.Fatalf("expected timeout output, got %+v", res.Output)
	}
}

func TestTimeoutOnErrorPropagatesOtherErrors(t *testing.T) {
	to := NewTimeout(0, time.Second)
	res, err := to.OnError(context.Background(), &InterceptorContext{}, context.Canceled)
	if err != nil {
		t.Fatalf("on_error: %v", err)
	}
	if res.Action != Propagate {
		t.Fatalf("expected Propagate for non-deadline errors, got %v", res.Action)
	}
}
