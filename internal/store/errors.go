package store

import "errors"

var (
	// ErrConflict is returned when a write would leave two confirmed
	// appointments of one instructor overlapping.
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
	// ErrIdempotencyConflict means a retried create reused an idempotency key
	// for a different booking request.
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
)
