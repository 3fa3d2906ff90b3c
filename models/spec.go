package models

import "context"

// Stage is the contract every pipeline participant implements. Execute is
// called once per run; any error it returns is captured by the executor and
// converted to a FAIL output (see package stageerrors) unless an on_error
// interceptor intervenes first. in is the declared-dependency-scoped view
// of prior outputs: a stage must read upstream data through in, not by
// reaching into sc.Bag directly, since sc.Bag holds every stage's output
// for the whole run while in holds only this stage's declared dependencies.
type Stage interface {
	Name() string
	Kind() StageKind
	Execute(ctx context.Context, sc *StageContext, in StageInputs) (StageOutput, error)
}

// StageFactory builds a fresh Stage instance per run. Registering a factory
// (rather than a shared instance) is the right choice whenever a stage
// implementation keeps per-run mutable state; a shared instance must be
// safe to invoke concurrently from multiple runs.
type StageFactory func(config map[string]any) (Stage, error)

// StageSpec is one compiled entry in a pipeline's DAG.
type StageSpec struct {
	Name         string `validate:"required"`
	Runner       Stage  `validate:"required"`
	Kind         StageKind
	Dependencies []string
	// Conditional marks that this stage tolerates its declared dependencies
	// resolving to SKIP; absent that, a skipped dependency suppresses this
	// stage (it is itself recorded SKIP with reason "upstream_unavailable").
	Conditional bool
}

// clone returns a deep-enough copy for the builder's copy-on-write scheme;
// Dependencies is the only mutable-looking field and is sliced defensively.
func (s StageSpec) clone() StageSpec {
	s.Dependencies = append([]string{}, s.Dependencies...)
	return s
}

// Clone is the exported form of clone, used by the Pipeline builder in the
// root stageflow package.
func (s StageSpec) Clone() StageSpec { return s.clone() }
