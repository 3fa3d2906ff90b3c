package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/stageflow/stageflow/factory"
	"github.com/stageflow/stageflow/models"
)

// Upper reads a string field from its declared dependencies (or the run's
// InputText if Key is empty) and writes its uppercased form under OutputKey.
type Upper struct {
	StageName string
	Key       string
	OutputKey string
}

func (s *Upper) Name() string           { return s.StageName }
func (s *Upper) Kind() models.StageKind { return models.KindTransform }

func (s *Upper) Execute(_ context.Context, sc *models.StageContext, in models.StageInputs) (models.StageOutput, error) {
	text := s.readText(sc, in)
	return models.OK(map[string]any{s.outputKey(): strings.ToUpper(text)}), nil
}

func (s *Upper) readText(sc *models.StageContext, in models.StageInputs) string {
	if s.Key == "" {
		return sc.Snapshot.InputText
	}
	text, _ := in.Get(s.Key, "").(string)
	return text
}

func (s *Upper) outputKey() string {
	if s.OutputKey == "" {
		return "text"
	}
	return s.OutputKey
}

// Reverse reads a string field from its declared dependencies (or the run's
// InputText if Key is empty) and writes its character-reversed form.
type Reverse struct {
	StageName string
	Key       string
	OutputKey string
}

func (s *Reverse) Name() string           { return s.StageName }
func (s *Reverse) Kind() models.StageKind { return models.KindTransform }

func (s *Reverse) Execute(_ context.Context, sc *models.StageContext, in models.StageInputs) (models.StageOutput, error) {
	var text string
	if s.Key == "" {
		text = sc.Snapshot.InputText
	} else {
		text, _ = in.Get(s.Key, "").(string)
	}

	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}

	outKey := s.OutputKey
	if outKey == "" {
		outKey = "text"
	}
	return models.OK(map[string]any{outKey: string(runes)}), nil
}

// Summarize concatenates one or more declared dependencies' keys into a
// single sentence-ish summary string, the simplest possible stand-in for a
// real fan-in stage.
type Summarize struct {
	StageName string
	Keys      []string
	OutputKey string
}

func (s *Summarize) Name() string           { return s.StageName }
func (s *Summarize) Kind() models.StageKind { return models.KindEnrich }

func (s *Summarize) Execute(_ context.Context, _ *models.StageContext, in models.StageInputs) (models.StageOutput, error) {
	parts := make([]string, 0, len(s.Keys))
	for _, key := range s.Keys {
		if v := in.Get(key, nil); v != nil {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	outKey := s.OutputKey
	if outKey == "" {
		outKey = "summary"
	}
	return models.OK(map[string]any{outKey: strings.Join(parts, ", ")}), nil
}

func init() {
	factory.RegisterFactory("upper", func(cfg map[string]any) (models.Stage, error) {
		name, _ := cfg["name"].(string)
		key, _ := cfg["key"].(string)
		outKey, _ := cfg["output_key"].(string)
		return &Upper{StageName: name, Key: key, OutputKey: outKey}, nil
	})
	factory.RegisterFactory("reverse", func(cfg map[string]any) (models.Stage, error) {
		name, _ := cfg["name"].(string)
		key, _ := cfg["key"].(string)
		outKey, _ := cfg["output_key"].(string)
		return &Reverse{StageName: name, Key: key, OutputKey: outKey}, nil
	})
	factory.RegisterFactory("summarize", func(cfg map[string]any) (models.Stage, error) {
		name, _ := cfg["name"].(string)
		var keys []string
		if raw, ok := cfg["keys"].([]interface{}); ok {
			for _, k := range raw {
				if ks, ok := k.(string); ok {
					keys = append(keys, ks)
				}
			}
		}
		outKey, _ := cfg["output_key"].(string)
		return &Summarize{StageName: name, Keys: keys, OutputKey: outKey}, nil
	})
}
