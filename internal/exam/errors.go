package exam

import "errors"

// Sentinel errors for the exam core. Callers match with errors.Is and wrap
// with fmt.Errorf("%w: ...") for detail.
var (
	// ErrPoolLoad means the question source was missing, malformed, or
	// violated a pool invariant. Fatal: no exam can be composed from it.
	ErrPoolLoad = errors.New("question pool load failed")

	// ErrComposition means the blueprint's ratio constraints could not be
	// satisfied within the attempt bound. Retryable by recomposing, but
	// usually indicates an inconsistent blueprint.
	ErrComposition = errors.New("exam composition failed")

	// ErrInvalidState means Submit was called on a terminated session or
	// with an empty option. This cannot happen through the supported
	// interaction protocol and fails loudly rather than corrupting state.
	ErrInvalidState = errors.New("invalid session state")

	// ErrNotTerminated means a result was requested before the session
	// finished.
	ErrNotTerminated = errors.New("session not terminated")
)
