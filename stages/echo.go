// Package stages bundles a handful of illustrative Stage implementations,
// grouped by theme across a few files, each registered with the factory
// registry from its file's init(). These exist to exercise the engine end to end; a
// production pipeline is expected to register its own domain stages the
// same way.
package stages

import (
	"context"

	"github.com/stageflow/stageflow/factory"
	"github.com/stageflow/stageflow/models"
)

// Echo copies a named field from its declared dependencies straight onto
// its output under the same key, a minimal stage useful for tests and as a
// passthrough placeholder.
type Echo struct {
	StageName string
	Key       string
}

func (s *Echo) Name() string           { return s.StageName }
func (s *Echo) Kind() models.StageKind { return models.KindTransform }

func (s *Echo) Execute(_ context.Context, _ *models.StageContext, in models.StageInputs) (models.StageOutput, error) {
	value := in.Get(s.Key, nil)
	return models.OK(map[string]any{s.Key: value}), nil
}

func init() {
	factory.RegisterFactory("echo", func(cfg map[string]any) (models.Stage, error) {
		name, _ := cfg["name"].(string)
		key, _ := cfg["key"].(string)
		if name == "" {
			name = "echo"
		}
		return &Echo{StageName: name, Key: key}, nil
	})
}
