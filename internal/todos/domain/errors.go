package domain

import "errors"

var (
	// ErrInvariantViolation means a caller handed the domain a state that can
	// only come from a bug upstream. It is never a user-facing outcome.
	ErrInvariantViolation = errors.New("domain: invariant violation")

	// ErrInvalidValue reports an enum or field value outside its domain.
	ErrInvalidValue = errors.New("domain: invalid value")
)
