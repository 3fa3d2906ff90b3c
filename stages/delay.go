package stages

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stageflow/stageflow/factory"
	"github.com/stageflow/stageflow/models"
)

// Delay pauses for Duration before completing OK, honoring cancellation.
type Delay struct {
	StageName string
	Duration  time.Duration
}

func (s *Delay) Name() string           { return s.StageName }
func (s *Delay) Kind() models.StageKind { return models.KindWork }

func (s *Delay) Execute(ctx context.Context, _ *models.StageContext, _ models.StageInputs) (models.StageOutput, error) {
	timer := time.NewTimer(s.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return models.OK(map[string]any{"delayed_ms": s.Duration.Milliseconds()}), nil
	case <-ctx.Done():
		return models.Cancel("context_cancelled", nil), nil
	}
}

// JSONParse unmarshals a string field from its declared dependencies into
// structured data.
type JSONParse struct {
	StageName string
	Key       string
	OutputKey string
}

func (s *JSONParse) Name() string           { return s.StageName }
func (s *JSONParse) Kind() models.StageKind { return models.KindTransform }

func (s *JSONParse) Execute(_ context.Context, _ *models.StageContext, in models.StageInputs) (models.StageOutput, error) {
	raw, _ := in.Get(s.Key, "").(string)

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return models.Fail(err.Error(), nil), err
	}

	outKey := s.OutputKey
	if outKey == "" {
		outKey = "parsed"
	}
	return models.OK(map[string]any{outKey: parsed}), nil
}

func init() {
	factory.RegisterFactory("delay", func(cfg map[string]any) (models.Stage, error) {
		name, _ := cfg["name"].(string)
		ms, _ := cfg["ms"].(int)
		return &Delay{StageName: name, Duration: time.Duration(ms) * time.Millisecond}, nil
	})
	factory.RegisterFactory("json_parse", func(cfg map[string]any) (models.Stage, error) {
		name, _ := cfg["name"].(string)
		key, _ := cfg["key"].(string)
		outKey, _ := cfg["output_key"].(string)
		return &JSONParse{StageName: name, Key: key, OutputKey: outKey}, nil
	})
}
