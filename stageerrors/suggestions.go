package stageerrors

// registry maps a stable error code to its fix-hint record. Lookup never
// fails: an unregistered code returns a generic record carrying that code,
// so callers never need to nil-check.
var registry = map[string]Info{
	"EMPTY_PIPELINE": {
		Code:    "EMPTY_PIPELINE",
		Summary: "pipeline has no stages",
		FixHint: "add at least one stage with WithStage before calling Build",
		DocURL:  "https://pkg.go.dev/github.com/stageflow/stageflow#Pipeline.Build",
	},
	"MISSING_DEPENDENCY": {
		Code:    "MISSING_DEPENDENCY",
		Summary: "a stage depends on a name no stage defines",
		FixHint: "add the missing stage, or remove it from Dependencies",
		DocURL:  "https://pkg.go.dev/github.com/stageflow/stageflow#Pipeline.Build",
	},
	"CYCLE_DETECTED": {
		Code:    "CYCLE_DETECTED",
		Summary: "the dependency graph contains a cycle",
		FixHint: "break the cycle by removing one of the reported edges",
		DocURL:  "https://pkg.go.dev/github.com/stageflow/stageflow#Pipeline.Build",
	},
	"STAGE_EXECUTION_FAILED": {
		Code:    "STAGE_EXECUTION_FAILED",
		Summary: "a stage returned a FAIL output or error",
		FixHint: "inspect the original error; consider an on_error interceptor to retry or replace",
	},
	"CONTRACT_CONFLICT": {
		Code:    "CONTRACT_CONFLICT",
		Summary: "two stages wrote the same ContextBag key",
		FixHint: "namespace output keys per stage, or declare an explicit single writer",
	},
	"DEADLOCK": {
		Code:    "DEADLOCK",
		Summary: "the scheduler has no ready or running stages but unfinished work remains",
		FixHint: "this indicates an executor bug; the graph should have been rejected at build()",
	},
	"TIMEOUT": {
		Code:    "TIMEOUT",
		Summary: "a stage exceeded its configured deadline",
		FixHint: "raise the stage's timeout, or investigate why it is slow",
	},
	"CIRCUIT_OPEN": {
		Code:    "CIRCUIT_OPEN",
		Summary: "the circuit breaker for this operation/provider is open",
		FixHint: "wait for the breaker's cooldown, or address the underlying failures",
	},
	"IMMUTABLE_VIEW_WRITE": {
		Code:    "IMMUTABLE_VIEW_WRITE",
		Summary: "a subrun attempted to mutate its frozen parent data view",
		FixHint: "write to the child's own ContextBag instead of the parent view",
	},
	"InvalidToken": {
		Code:    "InvalidToken",
		Summary: "the supplied token failed validation",
		FixHint: "obtain a fresh token from the identity provider",
	},
	"TokenExpired": {
		Code:    "TokenExpired",
		Summary: "the supplied token has expired",
		FixHint: "refresh the token and retry",
	},
	"MissingClaims": {
		Code:    "MissingClaims",
		Summary: "the token is missing a required claim",
		FixHint: "reissue the token with the required claim",
	},
	"CrossTenantAccess": {
		Code:    "CrossTenantAccess",
		Summary: "the caller's org does not match the resource's org",
		FixHint: "use a token scoped to the resource's organization",
	},
	"NotFound": {
		Code:    "NotFound",
		Summary: "the requested tool is not registered",
		FixHint: "register the tool, or check for a typo in its name",
	},
	"Denied": {
		Code:    "Denied",
		Summary: "the caller is not authorized to invoke this tool",
		FixHint: "grant the required permission, or use a different tool",
	},
	"ApprovalDenied": {
		Code:    "ApprovalDenied",
		Summary: "a human reviewer denied the pending tool invocation",
		FixHint: "revise the request before resubmitting for approval",
	},
	"ApprovalTimeout": {
		Code:    "ApprovalTimeout",
		Summary: "no approval decision arrived before the deadline",
		FixHint: "increase the approval deadline, or notify the approver",
	},
	"UndoFailed": {
		Code:    "UndoFailed",
		Summary: "rolling back a tool invocation failed",
		FixHint: "manual intervention is required; inspect the original error",
	},
	"PIPELINE_NOT_FOUND": {
		Code:    "PIPELINE_NOT_FOUND",
		Summary: "no pipeline is registered under the requested name",
		FixHint: "call Register before Get, or check for a typo in the name",
	},
	"PIPELINE_ALREADY_REGISTERED": {
		Code:    "PIPELINE_ALREADY_REGISTERED",
		Summary: "a pipeline is already registered under this name",
		FixHint: "pass overwrite=true to Register, or pick a different name",
	},
	"STAGE_FACTORY_NOT_FOUND": {
		Code:    "STAGE_FACTORY_NOT_FOUND",
		Summary: "no stage factory is registered for this type",
		FixHint: "register a factory for this type before building the pipeline",
	},
}

// Lookup returns the registered Info for code, or a generic placeholder
// carrying the code if nothing is registered.
func Lookup(code string) Info {
	if info, ok := registry[code]; ok {
		// return a copy so callers mutating Context don't corrupt the registry
		cp := info
		return cp
	}
	return Info{Code: code, Summary: "no suggestion registered for this code"}
}
