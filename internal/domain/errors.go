package domain

import "errors"

// Error taxonomy for the workout core. Handlers map these onto HTTP status
// codes; nothing in this package or the services retries them.
var (
	// ErrValidation covers malformed input shape: negative reps/weight,
	// rep ranges with min > max, end time before start time.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a lifecycle operation is applied
	// to a workout in the wrong state or on the wrong calendar day.
	ErrInvalidTransition = errors.New("invalid workout transition")

	// ErrNotFound covers both absent records and records owned by another
	// user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState guards suggestion preconditions: completed workout or
	// missing template.
	ErrInvalidState = errors.New("invalid workout state")

	// ErrConflict signals a lost optimistic-versioning write. Services retry
	// the read-modify-write; it never reaches a handler.
	ErrConflict = errors.New("concurrent modification conflict")
)
