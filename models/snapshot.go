package models

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Message is one turn in the run's conversation history.
type Message struct {
	Role      string         `json:"role" yaml:"role"`
	Content   string         `json:"content" yaml:"content"`
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ContextSnapshot is the immutable per-run input view. It is constructed
// once by the caller and never mutated afterwards; every stage and every
// subrun sees the same snapshot value.
type ContextSnapshot struct {
	PipelineRunID string `json:"pipeline_run_id,omitempty" yaml:"pipeline_run_id,omitempty"`
	RequestID     string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	SessionID     string `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	UserID        string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	OrgID         string `json:"org_id,omitempty" yaml:"org_id,omitempty"`
	InteractionID string `json:"interaction_id,omitempty" yaml:"interaction_id,omitempty"`

	Topology      string `json:"topology,omitempty" yaml:"topology,omitempty"`
	ExecutionMode string `json:"execution_mode,omitempty" yaml:"execution_mode,omitempty"`

	InputText string    `json:"input_text,omitempty" yaml:"input_text,omitempty"`
	Messages  []Message `json:"messages,omitempty" yaml:"messages,omitempty"`

	Extensions map[string]any `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ToMap renders the snapshot to its canonical mapping representation by
// round-tripping through the YAML codec, so the result only ever contains
// plain map/slice/scalar values — the same representation used for wide
// events and for StageOutput.Data.
func (s ContextSnapshot) ToMap() (map[string]any, error) {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("stageflow: marshal snapshot: %w", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("stageflow: unmarshal snapshot to map: %w", err)
	}
	return out, nil
}

// SnapshotFromMap rebuilds a ContextSnapshot from its mapping representation.
// SnapshotFromMap(s.ToMap()) must equal s for any s (lossless round-trip).
func SnapshotFromMap(m map[string]any) (ContextSnapshot, error) {
	raw, err := yaml.Marshal(m)
	if err != nil {
		return ContextSnapshot{}, fmt.Errorf("stageflow: marshal map: %w", err)
	}
	var out ContextSnapshot
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return ContextSnapshot{}, fmt.Errorf("stageflow: unmarshal map to snapshot: %w", err)
	}
	return out, nil
}

// ValidateSerializable confirms data can round-trip through the snapshot's
// canonical mapping representation — the requirement StageOutput.Data is
// held to.
func ValidateSerializable(data map[string]any) error {
	if data == nil {
		return nil
	}
	if _, err := yaml.Marshal(data); err != nil {
		return fmt.Errorf("stageflow: data is not serializable: %w", err)
	}
	return nil
}
