package interceptor

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stageflow/stageflow/models"
)

func TestMetricsRecordsStageStartAndCompletion(t *testing.T) {
	m := NewMetrics(0)
	ictx := &InterceptorContext{StageName: "transform", Timer: models.NewPipelineTimer()}

	if _, err := m.BeforeStage(context.Background(), ictx); err != nil {
		t.Fatalf("before_stage: %v", err)
	}
	if _, err := m.AfterStage(context.Background(), ictx, models.OK(nil)); err != nil {
		t.Fatalf("after_stage: %v", err)
	}

	var buf bytes.Buffer
	m.WritePrometheus(&buf)
	out := buf.String()

	if !strings.Contains(out, `stage_started_total{stage="transform"}`) {
		t.Fatalf("expected a started counter for stage transform, got:\n%s", out)
	}
	if !strings.Contains(out, `stage_completed_total{stage="transform",status="OK"}`) {
		t.Fatalf("expected a completed counter tagged with OK status, got:\n%s", out)
	}
	if !strings.Contains(out, "stage_duration_ms") {
		t.Fatalf("expected a duration histogram, got:\n%s", out)
	}
}
