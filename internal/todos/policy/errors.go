package policy

import "errors"

var (
	// ErrAuthorizationDenied is the single outcome of every failed check. It
	// deliberately does not say which rule fired.
	ErrAuthorizationDenied = errors.New("policy: not permitted")

	// ErrNotFound is returned when the subject of a decision is already gone.
	ErrNotFound = errors.New("policy: subject not found")

	// ErrInvalidRole is returned for role values outside the hierarchy.
	ErrInvalidRole = errors.New("policy: invalid role")
)
