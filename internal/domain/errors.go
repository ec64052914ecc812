package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. blank required field, malformed folio id, negative count).
// It is always raised before any database access.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would duplicate a unique business key,
// such as creating a shareholder whose folio id is already taken.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned by service functions when the acting user has
// not been authorized by the caller's session layer.
var ErrUnauthorized = errors.New("unauthorized")

// Kind classifies an error returned from the service layer so callers can
// branch on it without matching individual sentinels.
type Kind int

const (
	// KindNone means the error was nil.
	KindNone Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	// KindPersistence covers everything else: connection, query, and scan
	// failures that cannot be handled locally.
	KindPersistence
)

// String returns the lowercase name of the kind, used as the error code in
// HTTP responses.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation_error"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal_error"
	}
}

// KindOf reports which Kind err belongs to.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindPersistence
	}
}
