package stageflow

import (
	"github.com/go-playground/validator/v10"

	"github.com/stageflow/stageflow/interceptor"
	"github.com/stageflow/stageflow/models"
)

var specValidator = validator.New()

// Pipeline is the immutable fluent accumulator stages are declared on. Every
// mutating method returns a NEW Pipeline; the receiver is left untouched.
type Pipeline struct {
	specs        map[string]models.StageSpec
	order        []string
	interceptors []interceptor.Interceptor
}

// New starts an empty Pipeline.
func New() *Pipeline {
	return &Pipeline{specs: map[string]models.StageSpec{}}
}

// WithStage returns a new Pipeline with the given stage appended. A later
// WithStage using the same name overwrites the earlier spec in place
// (preserving its position in registration order) rather than appending a
// duplicate.
func (p *Pipeline) WithStage(name string, runner models.Stage, kind models.StageKind, dependencies []string, conditional bool) *Pipeline {
	next := p.clone()
	spec := models.StageSpec{
		Name:         name,
		Runner:       runner,
		Kind:         kind,
		Dependencies: append([]string{}, dependencies...),
		Conditional:  conditional,
	}
	if _, exists := next.specs[name]; !exists {
		next.order = append(next.order, name)
	}
	next.specs[name] = spec
	return next
}

// WithInterceptors returns a new Pipeline whose bound interceptor list is
// replaced with interceptors. These are carried onto the StageGraph by
// Build and apply to every run unless a per-run override is supplied.
func (p *Pipeline) WithInterceptors(interceptors ...interceptor.Interceptor) *Pipeline {
	next := p.clone()
	next.interceptors = append([]interceptor.Interceptor{}, interceptors...)
	return next
}

// Compose returns a new Pipeline containing the union of both pipelines'
// specs. On a name collision, other's spec wins; other's interceptor list
// wins if non-empty, otherwise the receiver's is kept.
func (p *Pipeline) Compose(other *Pipeline) *Pipeline {
	next := p.clone()
	for _, name := range other.order {
		spec := other.specs[name].Clone()
		if _, exists := next.specs[name]; !exists {
			next.order = append(next.order, name)
		}
		next.specs[name] = spec
	}
	if len(other.interceptors) > 0 {
		next.interceptors = append([]interceptor.Interceptor{}, other.interceptors...)
	}
	return next
}

// Build validates the accumulated specs and, on success, returns an
// immutable StageGraph. Build performs no I/O and emits no events.
func (p *Pipeline) Build() (*StageGraph, error) {
	if err := validate(p.specs, p.order); err != nil {
		return nil, err
	}
	if err := validateSpecFields(p.specs, p.order); err != nil {
		return nil, err
	}

	specs := make([]models.StageSpec, len(p.order))
	for i, name := range p.order {
		specs[i] = p.specs[name].Clone()
	}

	byName := make(map[string]models.StageSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	return &StageGraph{
		specs:        specs,
		byName:       byName,
		dependents:   computeDependents(specs),
		layers:       computeLayers(specs),
		interceptors: append([]interceptor.Interceptor{}, p.interceptors...),
	}, nil
}

func (p *Pipeline) clone() *Pipeline {
	specs := make(map[string]models.StageSpec, len(p.specs))
	for k, v := range p.specs {
		specs[k] = v
	}
	return &Pipeline{
		specs:        specs,
		order:        append([]string{}, p.order...),
		interceptors: append([]interceptor.Interceptor{}, p.interceptors...),
	}
}

// validateSpecFields applies struct-tag validation (required name/runner)
// to every accumulated spec before the rest of build() runs, surfacing a
// malformed-spec failure early rather than panicking deep in the executor.
func validateSpecFields(specs map[string]models.StageSpec, order []string) error {
	for _, name := range order {
		spec := specs[name]
		if err := specValidator.Struct(spec); err != nil {
			return err
		}
	}
	return nil
}
