package service

import (
	"errors"
	"fmt"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidInput       = errors.New("invalid_input")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInactiveUser       = errors.New("inactive_user")
	ErrEmailTaken         = errors.New("email_taken")
	ErrConflict           = errors.New("conflict")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrRateLimited        = errors.New("rate_limited")
)

// ErrForbidden is the policy denial, re-exported so transports only need to
// know this package.
var ErrForbidden = policy.ErrAuthorizationDenied

// invalid wraps a field-level validation failure.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// mapErr translates store and policy errors into the service vocabulary.
// Errors that are already service errors pass through untouched.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, policy.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrStale):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrEmailTaken
	case errors.Is(err, policy.ErrInvalidRole), errors.Is(err, domain.ErrInvalidValue):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

// requireActor rejects anonymous and inactive actors.
func requireActor(a policy.Actor) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}
