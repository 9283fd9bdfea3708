package policy

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
)

// ChangeRole decides a role change and, when allowed, returns the updated
// subject together with the single history entry to append. The caller
// persists both in one transaction. The returned entry has no ID yet.
func ChangeRole(subject domain.User, newRole domain.Role, actor Actor, reason *string, now time.Time) (domain.User, domain.RoleChange, error) {
	if !actor.Authenticated() {
		return subject, domain.RoleChange{}, ErrAuthorizationDenied
	}
	if subject.IsDeleted() {
		return subject, domain.RoleChange{}, ErrNotFound
	}
	if !newRole.Valid() {
		return subject, domain.RoleChange{}, fmt.Errorf("%w: %d", ErrInvalidRole, int(newRole))
	}
	if reason != nil && utf8.RuneCountInString(*reason) > domain.MaxReasonLength {
		return subject, domain.RoleChange{}, fmt.Errorf("%w: reason longer than %d characters", domain.ErrInvalidValue, domain.MaxReasonLength)
	}

	// No-op changes are refused rather than recorded.
	if newRole == subject.Role || subject.ID == actor.ID {
		return subject, domain.RoleChange{}, ErrAuthorizationDenied
	}
	if !actor.Role.CanManage(subject.Role) || !actor.Role.CanManage(newRole) {
		return subject, domain.RoleChange{}, ErrAuthorizationDenied
	}

	now = now.UTC()
	change := domain.RoleChange{
		UserID:      subject.ID,
		OldRole:     subject.Role,
		NewRole:     newRole,
		ChangedByID: actor.ID,
		ChangedAt:   now,
		Reason:      reason,
	}

	updated := subject
	updated.Role = newRole
	updated.UpdatedAt = now

	return updated, change, nil
}
