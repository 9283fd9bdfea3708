package domain_test

import (
	"strings"
	"testing"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/stretchr/testify/require"
)

func TestRoleChangeDerived(t *testing.T) {
	up := domain.RoleChange{OldRole: domain.RoleUser, NewRole: domain.RoleAdmin}
	require.True(t, up.IsPromotion())
	require.False(t, up.IsDemotion())
	require.Equal(t, "USER → ADMIN (promotion)", up.Description())

	down := domain.RoleChange{OldRole: domain.RoleSuperadmin, NewRole: domain.RoleUser}
	require.True(t, down.IsDemotion())
	require.Equal(t, "SUPERADMIN → USER (demotion)", down.Description())
}

func TestRoleChangeValidate(t *testing.T) {
	require.NoError(t, domain.RoleChange{OldRole: domain.RoleUser, NewRole: domain.RoleAdmin}.Validate())

	noop := domain.RoleChange{OldRole: domain.RoleAdmin, NewRole: domain.RoleAdmin}
	require.ErrorIs(t, noop.Validate(), domain.ErrInvariantViolation)

	bogus := domain.RoleChange{OldRole: domain.RoleUser, NewRole: domain.Role(8)}
	require.ErrorIs(t, bogus.Validate(), domain.ErrInvariantViolation)

	long := strings.Repeat("x", domain.MaxReasonLength+1)
	tooLong := domain.RoleChange{OldRole: domain.RoleUser, NewRole: domain.RoleAdmin, Reason: &long}
	require.ErrorIs(t, tooLong.Validate(), domain.ErrInvariantViolation)
}
