package domain

import "errors"

// ErrNotFound is returned by repo and service functions when a requested
// contact, meeting or trip does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, end before start, unknown purpose).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an operation would break an invariant of
// existing state, such as editing a meeting that a trip already references.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
