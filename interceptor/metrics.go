package interceptor

import (
	"context"
	"fmt"

	"github.com/VictoriaMetrics/metrics"

	"github.com/stageflow/stageflow/models"
)

// Metrics is the bundled Tracing/Metrics interceptor: it records
// stage-level counters and duration histograms and never influences the
// outcome (BeforeStage always continues; OnError always propagates).
type Metrics struct {
	Base
	set *metrics.Set
}

// NewMetrics builds a Metrics interceptor backed by its own VictoriaMetrics
// set so multiple pipelines in one process don't collide on metric names.
func NewMetrics(priority int) *Metrics {
	return &Metrics{
		Base: Base{NameValue: "metrics", PriorityValue: priority},
		set:  metrics.NewSet(),
	}
}

// WritePrometheus exposes the accumulated metrics in Prometheus text format.
func (m *Metrics) WritePrometheus(w interface{ Write([]byte) (int, error) }) {
	m.set.WritePrometheus(w)
}

func (m *Metrics) BeforeStage(_ context.Context, ictx *InterceptorContext) (BeforeResult, error) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`stage_started_total{stage=%q}`, ictx.StageName)).Inc()
	return BeforeResult{Action: Continue}, nil
}

func (m *Metrics) AfterStage(_ context.Context, ictx *InterceptorContext, output models.StageOutput) (models.StageOutput, error) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`stage_completed_total{stage=%q,status=%q}`, ictx.StageName, output.Status)).Inc()
	m.set.GetOrCreateHistogram(fmt.Sprintf(`stage_duration_ms{stage=%q}`, ictx.StageName)).Update(float64(ictx.Timer.ElapsedMS()))
	return output, nil
}
