package factory

import (
	"context"
	"testing"

	"github.com/stageflow/stageflow/models"
)

type noopStage struct{ name string }

func (s *noopStage) Name() string           { return s.name }
func (s *noopStage) Kind() models.StageKind { return models.KindTransform }
func (s *noopStage) Execute(context.Context, *models.StageContext, models.StageInputs) (models.StageOutput, error) {
	return models.OK(nil), nil
}

func TestRegisterFactoryAndResolve(t *testing.T) {
	RegisterFactory("test.factory_stage", func(cfg map[string]any) (models.Stage, error) {
		name, _ := cfg["name"].(string)
		return &noopStage{name: name}, nil
	})

	stage, err := Resolve("test.factory_stage", map[string]any{"name": "built"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if stage.Name() != "built" {
		t.Fatalf("expected factory to receive config, got name %q", stage.Name())
	}
}

func TestRegisterInstanceReturnsSharedStage(t *testing.T) {
	shared := &noopStage{name: "shared"}
	RegisterInstance("test.instance_stage", shared)

	got, err := Resolve("test.instance_stage", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != shared {
		t.Fatal("expected the same shared instance back")
	}
}

func TestResolveUnknownTypeFails(t *testing.T) {
	if _, err := Resolve("test.nonexistent_stage_type", nil); err == nil {
		t.Fatal("expected error for unregistered stage type")
	}
}

func TestListAndHas(t *testing.T) {
	RegisterFactory("test.listed_stage", func(map[string]any) (models.Stage, error) {
		return &noopStage{name: "listed"}, nil
	})
	if !Has("test.listed_stage") {
		t.Fatal("expected Has to report true after registration")
	}
	found := false
	for _, name := range List() {
		if name == "test.listed_stage" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected List to include the registered type")
	}
}
