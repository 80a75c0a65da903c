package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, unknown migration mode).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPrecondition is returned when a mutating operation is invoked in a state
// it cannot proceed from — a reassignment without a target id, a cascade
// strategy naming a destination that does not exist. This signals a programmer
// error in the calling layer rather than a data-quality issue; the operation
// fails fast and leaves its inputs unmodified.
var ErrPrecondition = errors.New("precondition violated")
