package shared

import "errors"

// Authorization outcomes. None of these is fatal: each one resolves to a
// navigation outcome (render or redirect).
var (
	ErrUnauthenticatedAccess = errors.New("unauthenticated access")
	ErrRoleMismatch          = errors.New("role mismatch")
	ErrUnknownRoute          = errors.New("unknown route")
	ErrMalformedSession      = errors.New("malformed session")
)

var (
	// ErrSessionPending is returned by session readers while the session is still resolving.
	ErrSessionPending = errors.New("session pending")

	// ErrStaleVerdict is returned when a verdict was superseded before it was enacted.
	ErrStaleVerdict = errors.New("stale verdict")
)
