package models

// StageInputs is the immutable view handed to a stage just before
// execution: its declared dependencies' outputs, in declared-dependency
// order, plus the run's snapshot and capability ports.
type StageInputs struct {
	Snapshot ContextSnapshot
	// priorOutputs holds ONLY the declared dependency outputs of the
	// current stage, keyed by upstream stage name.
	priorOutputs map[string]StageOutput
	// order mirrors StageSpec.Dependencies so Get's "first match wins"
	// search is deterministic.
	order []string
	Ports any
}

// NewStageInputs builds the per-stage input view. order must list the
// stage's declared dependencies in the order they were specified.
func NewStageInputs(snapshot ContextSnapshot, priorOutputs map[string]StageOutput, order []string, ports any) StageInputs {
	return StageInputs{
		Snapshot:     snapshot,
		priorOutputs: priorOutputs,
		order:        append([]string{}, order...),
		Ports:        ports,
	}
}

// Get searches every prior output's Data in declared-dependency order and
// returns the first match for key, or def if none of the dependencies
// produced it.
func (si StageInputs) Get(key string, def any) any {
	for _, dep := range si.order {
		out, ok := si.priorOutputs[dep]
		if !ok || out.Data == nil {
			continue
		}
		if val, ok := out.Data[key]; ok {
			return val
		}
	}
	return def
}

// GetFrom looks up key in a specific upstream stage's output. It returns
// def if the stage is absent, was skipped, or never produced the key.
func (si StageInputs) GetFrom(stage, key string, def any) any {
	out, ok := si.priorOutputs[stage]
	if !ok || out.Status != StatusOK || out.Data == nil {
		return def
	}
	if val, ok := out.Data[key]; ok {
		return val
	}
	return def
}

// HasOutput reports whether stage is a declared dependency that produced an
// output (of any status) for this run.
func (si StageInputs) HasOutput(stage string) bool {
	_, ok := si.priorOutputs[stage]
	return ok
}

// GetOutput returns the full StageOutput a declared dependency produced.
func (si StageInputs) GetOutput(stage string) (StageOutput, bool) {
	out, ok := si.priorOutputs[stage]
	return out, ok
}

// Flatten merges every declared dependency's Data into one map, namespaced
// by stage, for hardening checks that need to fingerprint the whole view
// a stage was handed (see interceptor.Hardening).
func (si StageInputs) Flatten() map[string]any {
	flat := make(map[string]any, len(si.priorOutputs))
	for stage, out := range si.priorOutputs {
		flat[stage] = out.Data
	}
	return flat
}
