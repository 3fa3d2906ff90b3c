package interceptor

import (
	"context"
	"testing"

	"github.com/stageflow/stageflow/models"
)

type recorder struct {
	Base
	log *[]string
}

func (r *recorder) BeforeStage(_ context.Context, _ *InterceptorContext) (BeforeResult, error) {
	*r.log = append(*r.log, "before:"+r.NameValue)
	return BeforeResult{Action: Continue}, nil
}

func (r *recorder) AfterStage(_ context.Context, _ *InterceptorContext, output models.StageOutput) (models.StageOutput, error) {
	*r.log = append(*r.log, "after:"+r.NameValue)
	return output, nil
}

func TestChainOrdersBeforeByPriorityAndAfterInReverse(t *testing.T) {
	var log []string
	a := &recorder{Base: Base{NameValue: "a", PriorityValue: 1}, log: &log}
	b := &recorder{Base: Base{NameValue: "b", PriorityValue: 2}, log: &log}
	chain := NewChain([]Interceptor{b, a})

	ictx := &InterceptorContext{StageName: "s"}
	if _, err := chain.Before(context.Background(), ictx); err != nil {
		t.Fatalf("before: %v", err)
	}
	if _, err := chain.After(context.Background(), ictx, models.OK(nil)); err != nil {
		t.Fatalf("after: %v", err)
	}

	want := []string{"before:a", "before:b", "after:b", "after:a"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log)
		}
	}
}

type shortCircuit struct {
	Base
	result BeforeResult
}

func (s *shortCircuit) BeforeStage(context.Context, *InterceptorContext) (BeforeResult, error) {
	return s.result, nil
}

func TestChainBeforeStopsAtFirstNonContinue(t *testing.T) {
	var log []string
	first := &shortCircuit{Base: Base{NameValue: "first", PriorityValue: 1}, result: BeforeResult{Action: SkipStage, Reason: "gate"}}
	second := &recorder{Base: Base{NameValue: "second", PriorityValue: 2}, log: &log}

	chain := NewChain([]Interceptor{first, second})
	res, err := chain.Before(context.Background(), &InterceptorContext{})
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if res.Action != SkipStage {
		t.Fatalf("expected SkipStage, got %v", res.Action)
	}
	if len(log) != 0 {
		t.Fatal("expected second interceptor to never run")
	}
}

func TestChainOnErrorStopsAtFirstNonPropagate(t *testing.T) {
	handled := &errorHandler{Base: Base{NameValue: "handler", PriorityValue: 1}}
	chain := NewChain([]Interceptor{handled})

	res, err := chain.OnError(context.Background(), &InterceptorContext{}, nil)
	if err != nil {
		t.Fatalf("on_error: %v", err)
	}
	if res.Action != RetryStage {
		t.Fatalf("expected RetryStage, got %v", res.Action)
	}
}

type errorHandler struct{ Base }

func (h *errorHandler) OnError(context.Context, *InterceptorContext, error) (ErrorResult, error) {
	return ErrorResult{Action: RetryStage, DelayMS: 10}, nil
}
