package interceptor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stageflow/stageflow/models"
)

// Logging is the bundled structured-logging interceptor. It logs
// before/after/error as zerolog records and never influences the outcome.
type Logging struct {
	Base
	Logger zerolog.Logger
}

// NewLogging builds a Logging interceptor writing through logger.
func NewLogging(priority int, logger zerolog.Logger) *Logging {
	return &Logging{
		Base:   Base{NameValue: "logging", PriorityValue: priority},
		Logger: logger,
	}
}

func (l *Logging) BeforeStage(_ context.Context, ictx *InterceptorContext) (BeforeResult, error) {
	l.Logger.Debug().
		Str("stage", ictx.StageName).
		Str("pipeline_run_id", ictx.PipelineRunID).
		Int("attempt", ictx.Attempt).
		Msg("stage starting")
	return BeforeResult{Action: Continue}, nil
}

func (l *Logging) AfterStage(_ context.Context, ictx *InterceptorContext, output models.StageOutput) (models.StageOutput, error) {
	evt := l.Logger.Debug()
	if output.Status == models.StatusFail {
		evt = l.Logger.Error()
	}
	evt.Str("stage", ictx.StageName).
		Str("status", string(output.Status)).
		Int64("duration_ms", ictx.Timer.ElapsedMS()).
		Msg("stage finished")
	return output, nil
}

func (l *Logging) OnError(_ context.Context, ictx *InterceptorContext, stageErr error) (ErrorResult, error) {
	l.Logger.Error().
		Str("stage", ictx.StageName).
		Err(stageErr).
		Msg("stage errored")
	return ErrorResult{Action: Propagate}, nil
}
