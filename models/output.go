package models

import "fmt"

// StageArtifact is a side-product of a stage execution — a file reference,
// a generated document, anything downstream consumers may want to surface
// without treating it as primary data.
type StageArtifact struct {
	Type    string `json:"type" yaml:"type"`
	Payload any    `json:"payload" yaml:"payload"`
}

// StageEvent is a domain event recorded during a stage's execution. Unlike
// the engine's own wide events (see package events), these are authored by
// the stage implementation itself and simply carried along on the output.
type StageEvent struct {
	Type string         `json:"type" yaml:"type"`
	Data map[string]any `json:"data" yaml:"data"`
}

// StageOutput is the result of executing one stage.
//
// Invariant: Data must be serializable to the ContextSnapshot mapping
// representation (see models.ValidateSerializable). FAIL outputs must carry
// Error; CANCEL and SKIP outputs must carry Reason.
type StageOutput struct {
	Status    StageStatus
	Data      map[string]any
	Artifacts []StageArtifact
	Events    []StageEvent
	Version   string
	Error     string
	Reason    string
}

// OK builds a successful output carrying data.
func OK(data map[string]any) StageOutput {
	return StageOutput{Status: StatusOK, Data: cloneData(data)}
}

// Skip builds an output declaring the stage inapplicable to this run.
func Skip(reason string) StageOutput {
	return StageOutput{Status: StatusSkip, Reason: reason}
}

// Cancel builds a cancellation output, optionally carrying partial data.
func Cancel(reason string, data map[string]any) StageOutput {
	return StageOutput{Status: StatusCancel, Reason: reason, Data: cloneData(data)}
}

// Fail builds a failure output. err is the human-readable error summary.
func Fail(err string, data map[string]any) StageOutput {
	return StageOutput{Status: StatusFail, Error: err, Data: cloneData(data)}
}

// WithVersion stamps a version on a copy of the output, used by typed-output
// wrappers that want a registered schema version attached.
func (o StageOutput) WithVersion(version string) StageOutput {
	o.Version = version
	return o
}

// WithArtifacts appends artifacts to a copy of the output.
func (o StageOutput) WithArtifacts(artifacts ...StageArtifact) StageOutput {
	o.Artifacts = append(append([]StageArtifact{}, o.Artifacts...), artifacts...)
	return o
}

// WithEvents appends stage-authored events to a copy of the output.
func (o StageOutput) WithEvents(events ...StageEvent) StageOutput {
	o.Events = append(append([]StageEvent{}, o.Events...), events...)
	return o
}

// Validate checks the invariants documented on StageOutput.
func (o StageOutput) Validate() error {
	switch o.Status {
	case StatusFail:
		if o.Error == "" {
			return fmt.Errorf("stageflow: FAIL output must carry a non-empty Error")
		}
	case StatusSkip, StatusCancel:
		if o.Reason == "" {
			return fmt.Errorf("stageflow: %s output must carry a non-empty Reason", o.Status)
		}
	case StatusOK:
		// no additional constraint
	default:
		return fmt.Errorf("stageflow: unknown stage status %q", o.Status)
	}
	return ValidateSerializable(o.Data)
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	clone := make(map[string]any, len(data))
	for k, v := range data {
		clone[k] = v
	}
	return clone
}
