// Package events defines the observability protocol stages and the
// executor emit through: wide events correlating a run's full lifecycle.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WideEvent is a single observability event. It carries the run's
// pipeline_run_id; ParentRunID is emitted only when set on the struct, and
// NewWideEvent, Emit and EmitAwait never set it.
type WideEvent struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	Timestamp     time.Time      `json:"timestamp"`
	PipelineRunID string         `json:"pipeline_run_id,omitempty"`
	ParentRunID   string         `json:"parent_run_id,omitempty"`
	Stage         string         `json:"stage,omitempty"`
	Status        string         `json:"status,omitempty"`
	DurationMs    int64          `json:"duration_ms,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// NewWideEvent stamps the minimum schema every wide event must carry
// (event_id, event_type, timestamp, pipeline_run_id) and attaches extra
// as the event's Data.
func NewWideEvent(eventType, pipelineRunID string, extra map[string]any) WideEvent {
	return WideEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		PipelineRunID: pipelineRunID,
		Data:          extra,
	}
}

// ToMap flattens a WideEvent to the map[string]any shape the Sink protocol
// accepts, merging Data's keys alongside the envelope fields.
func (e WideEvent) ToMap() map[string]any {
	m := map[string]any{
		"event_id":   e.EventID,
		"event_type": e.EventType,
		"timestamp":  e.Timestamp,
	}
	if e.PipelineRunID != "" {
		m["pipeline_run_id"] = e.PipelineRunID
	}
	if e.ParentRunID != "" {
		m["parent_run_id"] = e.ParentRunID
	}
	if e.Stage != "" {
		m["stage"] = e.Stage
	}
	if e.Status != "" {
		m["status"] = e.Status
	}
	if e.DurationMs != 0 {
		m["duration_ms"] = e.DurationMs
	}
	for k, v := range e.Data {
		m[k] = v
	}
	return m
}

// Emit builds a WideEvent carrying the minimum schema and fire-and-forgets
// it through sink. Every call site in this module should emit through this
// helper rather than building its own ad-hoc map, so the minimum schema is
// enforced in one place.
func Emit(sink Sink, eventType, pipelineRunID string, extra map[string]any) {
	sink.TryEmit(eventType, NewWideEvent(eventType, pipelineRunID, extra).ToMap())
}

// EmitAwait is Emit's blocking counterpart, for call sites that need to
// observe delivery failure.
func EmitAwait(ctx context.Context, sink Sink, eventType, pipelineRunID string, extra map[string]any) error {
	return sink.Emit(ctx, eventType, NewWideEvent(eventType, pipelineRunID, extra).ToMap())
}

// Sink is the event sink protocol. Emit is awaited by the caller; TryEmit is
// fire-and-forget and must never panic or block the caller on failure.
//
// Implementations MUST be safe for concurrent use — the executor calls a
// sink from many stage tasks at once.
type Sink interface {
	Emit(ctx context.Context, eventType string, data map[string]any) error
	TryEmit(eventType string, data map[string]any)
}

// NopSink discards every event. It is the default when a run is started
// without an explicit sink.
type NopSink struct{}

func (NopSink) Emit(context.Context, string, map[string]any) error { return nil }
func (NopSink) TryEmit(string, map[string]any)                     {}

// MultiSink fans a single emission out to several sinks, broadcasting each
// event to every registered listener against the Sink protocol.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink builds a sink that forwards to every given sink in order.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: append([]Sink{}, sinks...)}
}

func (m *MultiSink) Emit(ctx context.Context, eventType string, data map[string]any) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Emit(ctx, eventType, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiSink) TryEmit(eventType string, data map[string]any) {
	for _, s := range m.sinks {
		s.TryEmit(eventType, data)
	}
}
