// Package stageerrors defines the structured error taxonomy used across the
// pipeline builder, validator and executor, plus the fix-hint suggestion
// registry every error is looked up against.
package stageerrors

import "fmt"

// Info is the ContractErrorInfo-shaped record every error in the taxonomy
// carries: a stable code, a short summary, an actionable fix hint, a
// reference doc URL and free-form context.
type Info struct {
	Code    string
	Summary string
	FixHint string
	DocURL  string
	Context map[string]any
}

// --- Validation errors (raised at build()) -------------------------------

// EmptyPipelineError is raised when build() is called on a pipeline with no
// stages.
type EmptyPipelineError struct{}

func (e *EmptyPipelineError) Error() string {
	return "stageflow: pipeline has no stages"
}

// Info returns this error's suggestion-registry entry.
func (e *EmptyPipelineError) Info() Info { return Lookup("EMPTY_PIPELINE") }

// MissingDependencyError is raised when a stage declares a dependency on a
// name no stage in the pipeline defines.
type MissingDependencyError struct {
	Stage      string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("stageflow: stage %q depends on undefined stage %q", e.Stage, e.Dependency)
}

func (e *MissingDependencyError) Info() Info {
	info := Lookup("MISSING_DEPENDENCY")
	info.Context = map[string]any{"stage": e.Stage, "dependency": e.Dependency}
	return info
}

// CycleDetectedError is raised when the dependency graph contains a cycle.
// Path is the full cycle, starting and ending at the same node, e.g.
// ["a","b","c","a"].
type CycleDetectedError struct {
	Path []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("stageflow: dependency cycle detected: %v", e.Path)
}

func (e *CycleDetectedError) Info() Info {
	info := Lookup("CYCLE_DETECTED")
	info.Context = map[string]any{"cycle_path": e.Path}
	return info
}

// --- Execution errors (raised at run time) -------------------------------

// StageExecutionError wraps the error a stage's Execute returned (or the
// one synthesized for an unconverted on_error propagate) that aborted the
// run.
type StageExecutionError struct {
	Stage    string
	Original error
}

func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("stageflow: stage %q failed: %v", e.Stage, e.Original)
}

func (e *StageExecutionError) Unwrap() error { return e.Original }

func (e *StageExecutionError) Info() Info {
	info := Lookup("STAGE_EXECUTION_FAILED")
	info.Context = map[string]any{"stage": e.Stage}
	return info
}

// ContractConflictError is surfaced when the second distinct writer of a
// ContextBag key is detected during result flattening.
type ContractConflictError struct {
	Key      string
	Writer1  string
	Writer2  string
}

func (e *ContractConflictError) Error() string {
	return fmt.Sprintf("stageflow: contract conflict on key %q between %q and %q", e.Key, e.Writer1, e.Writer2)
}

func (e *ContractConflictError) Info() Info {
	info := Lookup("CONTRACT_CONFLICT")
	info.Context = map[string]any{"key": e.Key, "writer1": e.Writer1, "writer2": e.Writer2}
	return info
}

// DeadlockError indicates the scheduler's ready and running sets both went
// empty while stages remained unfinished — unreachable for a validated DAG
// and therefore an invariant violation if it ever surfaces.
type DeadlockError struct {
	Unfinished []string
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("stageflow: deadlock, unfinished stages: %v", e.Unfinished)
}

func (e *DeadlockError) Info() Info { return Lookup("DEADLOCK") }

// TimeoutError is the TIMEOUT entry of the taxonomy. The bundled Timeout
// interceptor reports an expired deadline as a FAIL output whose Error is
// "timeout" and does not construct this type.
type TimeoutError struct {
	Stage string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("stageflow: stage %q timed out", e.Stage)
}

func (e *TimeoutError) Info() Info {
	info := Lookup("TIMEOUT")
	info.Context = map[string]any{"stage": e.Stage}
	return info
}

// CircuitOpenError is produced by the CircuitBreaker interceptor when a
// stage is invoked while its breaker is open.
type CircuitOpenError struct {
	Operation string
	Provider  string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("stageflow: circuit open for %s/%s", e.Operation, e.Provider)
}

func (e *CircuitOpenError) Info() Info {
	info := Lookup("CIRCUIT_OPEN")
	info.Context = map[string]any{"operation": e.Operation, "provider": e.Provider}
	return info
}

// --- Lineage errors -------------------------------------------------------

// ImmutableViewWriteError is raised when a subrun child attempts to mutate
// its frozen parent-data view.
type ImmutableViewWriteError struct {
	Key string
}

func (e *ImmutableViewWriteError) Error() string {
	return fmt.Sprintf("stageflow: cannot write %q: parent data view is read-only", e.Key)
}

func (e *ImmutableViewWriteError) Info() Info {
	info := Lookup("IMMUTABLE_VIEW_WRITE")
	info.Context = map[string]any{"key": e.Key}
	return info
}

// --- Auth errors (bundled interceptors) -----------------------------------

type InvalidTokenError struct{ Reason string }

func (e *InvalidTokenError) Error() string { return "stageflow: invalid token: " + e.Reason }
func (e *InvalidTokenError) Info() Info    { return Lookup("InvalidToken") }

type TokenExpiredError struct{}

func (e *TokenExpiredError) Error() string { return "stageflow: token expired" }
func (e *TokenExpiredError) Info() Info    { return Lookup("TokenExpired") }

type MissingClaimsError struct{ Claim string }

func (e *MissingClaimsError) Error() string {
	return "stageflow: missing required claim: " + e.Claim
}
func (e *MissingClaimsError) Info() Info { return Lookup("MissingClaims") }

type CrossTenantAccessError struct {
	ResourceOrg string
	CallerOrg   string
}

func (e *CrossTenantAccessError) Error() string {
	return fmt.Sprintf("stageflow: caller org %q may not access resource org %q", e.CallerOrg, e.ResourceOrg)
}
func (e *CrossTenantAccessError) Info() Info { return Lookup("CrossTenantAccess") }

// --- Registry errors --------------------------------------------------

// PipelineNotFoundError is raised when Get is called with a name the
// process-wide pipeline registry has no entry for.
type PipelineNotFoundError struct{ Name string }

func (e *PipelineNotFoundError) Error() string {
	return fmt.Sprintf("stageflow: no pipeline registered under %q", e.Name)
}
func (e *PipelineNotFoundError) Info() Info {
	info := Lookup("PIPELINE_NOT_FOUND")
	info.Context = map[string]any{"name": e.Name}
	return info
}

// PipelineAlreadyRegisteredError is raised by Register when a name is
// already taken and overwrite was not requested.
type PipelineAlreadyRegisteredError struct{ Name string }

func (e *PipelineAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("stageflow: pipeline %q is already registered", e.Name)
}
func (e *PipelineAlreadyRegisteredError) Info() Info {
	info := Lookup("PIPELINE_ALREADY_REGISTERED")
	info.Context = map[string]any{"name": e.Name}
	return info
}

// StageFactoryNotFoundError is raised when resolving a stage by type name
// against the factory registry finds no matching entry.
type StageFactoryNotFoundError struct{ Type string }

func (e *StageFactoryNotFoundError) Error() string {
	return fmt.Sprintf("stageflow: unknown stage type: %s", e.Type)
}
func (e *StageFactoryNotFoundError) Info() Info {
	info := Lookup("STAGE_FACTORY_NOT_FOUND")
	info.Context = map[string]any{"type": e.Type}
	return info
}

// --- Tool errors (optional tool-execution helper boundary) ----------------

type ToolNotFoundError struct{ Tool string }

func (e *ToolNotFoundError) Error() string { return "stageflow: tool not found: " + e.Tool }
func (e *ToolNotFoundError) Info() Info    { return Lookup("NotFound") }

type ToolDeniedError struct{ Tool string }

func (e *ToolDeniedError) Error() string { return "stageflow: tool denied: " + e.Tool }
func (e *ToolDeniedError) Info() Info    { return Lookup("Denied") }

type ApprovalDeniedError struct{ Tool string }

func (e *ApprovalDeniedError) Error() string { return "stageflow: approval denied: " + e.Tool }
func (e *ApprovalDeniedError) Info() Info    { return Lookup("ApprovalDenied") }

type ApprovalTimeoutError struct{ Tool string }

func (e *ApprovalTimeoutError) Error() string { return "stageflow: approval timed out: " + e.Tool }
func (e *ApprovalTimeoutError) Info() Info    { return Lookup("ApprovalTimeout") }

type UndoFailedError struct {
	Tool     string
	Original error
}

func (e *UndoFailedError) Error() string {
	return fmt.Sprintf("stageflow: undo failed for %s: %v", e.Tool, e.Original)
}
func (e *UndoFailedError) Unwrap() error { return e.Original }
func (e *UndoFailedError) Info() Info    { return Lookup("UndoFailed") }
