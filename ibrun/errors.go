// Package ibrun holds the error-kind sentinels shared across the module.
// Errors are wrapped with fmt.Errorf("%w: ...", ibrun.ErrX, ...) at the
// point they're detected so callers can errors.Is against the kind
// while still getting a rank-id'd diagnostic message.
package ibrun

import "errors"

var (
	// ErrInvalidConfiguration: unknown method/shape/boundary type,
	// malformed polygon file. Aborts at startup on all ranks.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrGeometryDegenerate: zero-area body, non-simple polygon. Never
	// silently recovered.
	ErrGeometryDegenerate = errors.New("degenerate geometry")

	// ErrStencilUnderdetermined: fewer than 2 fluid donors for an IB
	// cell, usually a body touching the outer wall.
	ErrStencilUnderdetermined = errors.New("stencil underdetermined")

	// ErrLinearSolveDiverged: a fatal error for the whole run; the
	// caller MAY retry once with a halved time step.
	ErrLinearSolveDiverged = errors.New("linear solve diverged")

	// ErrCommunicationFailure: fatal to the whole job.
	ErrCommunicationFailure = errors.New("communication failure")
)
