package scheduling

// Typed errors surfaced by the matching engine and orchestrator. Handlers map
// them to HTTP status codes; everything else is treated as an internal error.

// ValidationError means a required field was missing or malformed.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError means the operation lost to an existing slot or booking
// (overlapping availability, double-booking race loser).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// ForbiddenError means the actor lacks the role or ownership for the operation.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

// NotFoundError means the referenced slot, request or submission does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// InvalidStateError means the record exists but its current status does not
// allow the transition (e.g. completing a future slot).
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }
