package pipeline

import "github.com/rotisserie/eris"

// Error taxonomy for the run state machine and its callers. Matched with
// errors.Is; wrapping sites add call-specific context.
var (
	// ErrConfiguration means a required credential or setting is missing.
	// Fatal; no stage starts.
	ErrConfiguration = eris.New("configuration error")

	// ErrInferenceCall means the inference collaborator returned a
	// transport or non-success failure. Fatal for Phase 1; the
	// negotiation analyzer absorbs it via the deterministic fallback.
	ErrInferenceCall = eris.New("inference call failed")

	// ErrMalformedOutput means the structured-response recoverer
	// exhausted its repair attempts.
	ErrMalformedOutput = eris.New("malformed inference output")

	// ErrNotFound means a HITL target is absent or not awaiting a
	// decision. The run state is untouched.
	ErrNotFound = eris.New("not found")

	// ErrAlreadyRunning rejects concurrent run starts and HITL mutations
	// against an in-progress run.
	ErrAlreadyRunning = eris.New("run already in progress")
)
