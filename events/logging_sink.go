package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LoggingSink emits wide events as structured zerolog records. Events whose
// type contains "failed" or whose "status" field is FAIL log at error, other
// pipeline.* events log at info, and everything else logs at debug.
type LoggingSink struct {
	Logger zerolog.Logger
}

// NewLoggingSink wraps a zerolog.Logger as an events.Sink.
func NewLoggingSink(logger zerolog.Logger) *LoggingSink {
	return &LoggingSink{Logger: logger}
}

func (s *LoggingSink) Emit(_ context.Context, eventType string, data map[string]any) error {
	s.log(eventType, data)
	return nil
}

func (s *LoggingSink) TryEmit(eventType string, data map[string]any) {
	s.log(eventType, data)
}

func (s *LoggingSink) log(eventType string, data map[string]any) {
	evt := s.levelFor(eventType, data).Str("event_type", eventType)
	for k, v := range data {
		evt = evt.Interface(k, v)
	}
	evt.Msg(eventType)
}

func (s *LoggingSink) levelFor(eventType string, data map[string]any) *zerolog.Event {
	switch {
	case contains(eventType, "failed") || data["status"] == "FAIL":
		return s.Logger.Error()
	case contains(eventType, "pipeline."):
		return s.Logger.Info()
	default:
		return s.Logger.Debug()
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
