package interceptor

import (
	"context"
	"testing"

	"github.com/stageflow/stageflow/models"
)

func TestScriptGuardContinuesOnTruthyExpression(t *testing.T) {
	g := NewScriptGuard(0, "ctx._snapshot.input_text === 'hello'", "")
	in := models.NewStageInputs(models.ContextSnapshot{InputText: "hello"}, nil, nil, nil)
	ictx := &InterceptorContext{Inputs: in}

	res, err := g.BeforeStage(context.Background(), ictx)
	if err != nil {
		t.Fatalf("before_stage: %v", err)
	}
	if res.Action != Continue {
		t.Fatalf("expected Continue for truthy expression, got %v", res.Action)
	}
}

func TestScriptGuardSkipsOnFalsyExpression(t *testing.T) {
	g := NewScriptGuard(0, "false", "filtered_by_guard")
	ictx := &InterceptorContext{Inputs: models.NewStageInputs(models.ContextSnapshot{}, nil, nil, nil)}

	res, err := g.BeforeStage(context.Background(), ictx)
	if err != nil {
		t.Fatalf("before_stage: %v", err)
	}
	if res.Action != SkipStage {
		t.Fatalf("expected SkipStage for falsy expression, got %v", res.Action)
	}
	if res.Reason != "filtered_by_guard" {
		t.Fatalf("expected configured skip reason, got %q", res.Reason)
	}
}

func TestScriptGuardReadsUpstreamDependencyValues(t *testing.T) {
	g := NewScriptGuard(0, "ctx.upstream.flag === true", "")
	in := models.NewStageInputs(models.ContextSnapshot{}, map[string]models.StageOutput{
		"upstream": models.OK(map[string]any{"flag": true}),
	}, []string{"upstream"}, nil)
	ictx := &InterceptorContext{Inputs: in}

	res, err := g.BeforeStage(context.Background(), ictx)
	if err != nil {
		t.Fatalf("before_stage: %v", err)
	}
	if res.Action != Continue {
		t.Fatalf("expected Continue when upstream flag is true, got %v", res.Action)
	}
}

func TestScriptGuardErrorsOnInvalidExpression(t *testing.T) {
	g := NewScriptGuard(0, "this is not valid javascript (((", "")
	ictx := &InterceptorContext{Inputs: models.NewStageInputs(models.ContextSnapshot{}, nil, nil, nil)}

	if _, err := g.BeforeStage(context.Background(), ictx); err == nil {
		t.Fatal("expected an evaluation error for malformed script")
	}
}
