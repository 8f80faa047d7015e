package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, zero seats, departure in the
// past). Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when the acting user is not the trip's driver
// or not the request's passenger. Handlers should map this to HTTP 403.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict is returned when an operation loses a race or violates a
// uniqueness rule: a second active request for the same (trip, passenger)
// pair, or a confirm attempt when no seats are left.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrExternal is returned when an external collaborator (text generation,
// mail delivery) fails or is unavailable. It is recovered per dispatch
// attempt and never surfaces as a failure of the triggering trip mutation.
var ErrExternal = errors.New("external service error")
