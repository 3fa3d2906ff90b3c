package interceptor

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stageflow/stageflow/events"
	"github.com/stageflow/stageflow/models"
)

// Hardening bundles the ContextSize/Immutability development-mode checks:
// it monitors how large a stage's output grows and flags when a stage
// appears to have mutated the (supposedly immutable) view of its upstream
// outputs. Neither check changes the run's outcome —
// this is observability, implemented on stdlib encoding/json since no
// library in the retrieved pack specializes in mutation fingerprinting.
//
// Stages with no dependency between them run concurrently, so BeforeStage
// and AfterStage for different stages can land on the same *Hardening from
// different goroutines; mu guards baselines against that.
type Hardening struct {
	Base
	MaxOutputBytes int

	mu        sync.Mutex
	baselines map[string]string // stage name -> fingerprint of its Inputs at BeforeStage
}

// NewHardening builds a Hardening interceptor that warns once a stage's
// output payload exceeds maxOutputBytes (0 disables the size check).
func NewHardening(priority, maxOutputBytes int) *Hardening {
	return &Hardening{
		Base:           Base{NameValue: "hardening", PriorityValue: priority},
		MaxOutputBytes: maxOutputBytes,
		baselines:      map[string]string{},
	}
}

func (h *Hardening) BeforeStage(_ context.Context, ictx *InterceptorContext) (BeforeResult, error) {
	fp := fingerprint(ictx.Inputs.Flatten())
	h.mu.Lock()
	h.baselines[ictx.StageName] = fp
	h.mu.Unlock()
	return BeforeResult{Action: Continue}, nil
}

func (h *Hardening) AfterStage(_ context.Context, ictx *InterceptorContext, output models.StageOutput) (models.StageOutput, error) {
	h.mu.Lock()
	baseline, ok := h.baselines[ictx.StageName]
	delete(h.baselines, ictx.StageName)
	h.mu.Unlock()

	if ok {
		if after := fingerprint(ictx.Inputs.Flatten()); after != baseline {
			events.Emit(ictx.Sink, "contract.mutation_detected", ictx.PipelineRunID, map[string]any{
				"stage": ictx.StageName,
			})
		}
	}

	if h.MaxOutputBytes > 0 && output.Data != nil {
		if raw, err := json.Marshal(output.Data); err == nil && len(raw) > h.MaxOutputBytes {
			events.Emit(ictx.Sink, "stream.buffer_overflow", ictx.PipelineRunID, map[string]any{
				"stage": ictx.StageName,
				"bytes": len(raw),
				"limit": h.MaxOutputBytes,
			})
		}
	}

	return output, nil
}

func fingerprint(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
