package interceptor

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
)

// ScriptGuard is a GUARD-kind convenience interceptor: it evaluates a small
// JavaScript boolean expression against the stage's inputs (exposed to the
// script as `ctx`) and skips the stage when the expression is falsy.
type ScriptGuard struct {
	Base
	// Expression is evaluated once per invocation; a truthy result lets the
	// stage proceed, a falsy result short-circuits it with SkipReason.
	Expression string
	SkipReason string
}

// NewScriptGuard builds a ScriptGuard evaluating expression before every
// stage of the runs whose interceptor list includes it.
func NewScriptGuard(priority int, expression, skipReason string) *ScriptGuard {
	return &ScriptGuard{
		Base:       Base{NameValue: "script_guard", PriorityValue: priority},
		Expression: expression,
		SkipReason: skipReason,
	}
}

func (g *ScriptGuard) BeforeStage(_ context.Context, ictx *InterceptorContext) (BeforeResult, error) {
	runtime := goja.New()
	jsCtx := ictx.Inputs.Flatten()
	jsCtx["_snapshot"] = map[string]any{
		"input_text":     ictx.Inputs.Snapshot.InputText,
		"topology":       ictx.Inputs.Snapshot.Topology,
		"execution_mode": ictx.Inputs.Snapshot.ExecutionMode,
	}
	if err := runtime.Set("ctx", jsCtx); err != nil {
		return BeforeResult{}, fmt.Errorf("stageflow: scriptguard: set ctx: %w", err)
	}

	result, err := runtime.RunString(g.Expression)
	if err != nil {
		return BeforeResult{}, fmt.Errorf("stageflow: scriptguard: evaluate %q: %w", g.Expression, err)
	}

	if !result.ToBoolean() {
		reason := g.SkipReason
		if reason == "" {
			reason = "script_guard_rejected"
		}
		return BeforeResult{Action: SkipStage, Reason: reason}, nil
	}
	return BeforeResult{Action: Continue}, nil
}
