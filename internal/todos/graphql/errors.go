package graphql

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	"github.com/AD0791/graphql-todos-backend/pkg/slogx"
)

// Error codes carried in extensions.code.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL"
)

// Error is a resolver error with a stable code. Its message is safe to show
// to clients.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

func badInput(msg string) error {
	return &Error{Code: CodeBadUserInput, Message: msg}
}

// mapError converts service errors into client errors. Anything unexpected
// is logged and reported as INTERNAL without details.
func mapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var gqlErr *Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return &Error{Code: CodeUnauthenticated, Message: "authentication required"}
	case errors.Is(err, service.ErrInvalidCredentials):
		return &Error{Code: CodeUnauthenticated, Message: "invalid email or password"}
	case errors.Is(err, service.ErrInvalidRefresh):
		return &Error{Code: CodeUnauthenticated, Message: "invalid refresh token"}
	case errors.Is(err, service.ErrInactiveUser):
		return &Error{Code: CodeForbidden, Message: "user is inactive"}
	case errors.Is(err, service.ErrForbidden):
		return &Error{Code: CodeForbidden, Message: "not permitted"}
	case errors.Is(err, service.ErrNotFound):
		return &Error{Code: CodeNotFound, Message: "not found"}
	case errors.Is(err, service.ErrEmailTaken):
		return &Error{Code: CodeConflict, Message: "email already registered"}
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrBootstrapConflict):
		return &Error{Code: CodeConflict, Message: "concurrent modification, retry"}
	case errors.Is(err, service.ErrRateLimited):
		return &Error{Code: CodeRateLimited, Message: "too many attempts, retry later"}
	case errors.Is(err, service.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
		return &Error{Code: CodeBadUserInput, Message: msg}
	}

	l := slogx.FromContext(ctx)
	if errors.Is(err, domain.ErrInvariantViolation) {
		l.Error("invariant violation", slog.Any("error", err))
	} else {
		l.Error("graphql resolver failed", slog.Any("error", err))
	}
	return &Error{Code: CodeInternal, Message: "internal error"}
}
