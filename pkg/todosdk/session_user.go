package todosdk

import "context"

const userFields = `id email fullName role roleDisplayName isActive createdById createdAt updatedAt deletedAt deletedById isDeleted`

const roleChangeFields = `id userId oldRole newRole changedById changedAt reason isPromotion isDemotion description`

// Me returns the session's current identity.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var out struct {
		Me *User `json:"me"`
	}
	if err := s.Query(ctx, `{ me { `+userFields+` } }`, nil, &out); err != nil {
		return nil, err
	}
	return out.Me, nil
}

// GetUser returns a user by id, or nil when it is not visible.
func (s *Session) GetUser(ctx context.Context, id string, includeDeleted bool) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	err := s.Query(ctx, `query($id: ID!, $d: Boolean) { user(id: $id, includeDeleted: $d) { `+userFields+` } }`,
		map[string]any{"id": id, "d": includeDeleted}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// ListUsers lists users with the given role (empty for all). Requires ADMIN.
func (s *Session) ListUsers(ctx context.Context, role string) ([]User, error) {
	vars := map[string]any{}
	filter := map[string]any{}
	if role != "" {
		filter["role"] = role
	}
	vars["filter"] = filter

	var out struct {
		Users []User `json:"users"`
	}
	if err := s.Query(ctx, `query($filter: UserFilter) { users(filter: $filter) { `+userFields+` } }`, vars, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ChangeUserRole changes a user's role and returns the audit record.
func (s *Session) ChangeUserRole(ctx context.Context, id, role string, reason *string) (*RoleChange, error) {
	var out struct {
		ChangeUserRole RoleChange `json:"changeUserRole"`
	}
	err := s.Query(ctx, `mutation($id: ID!, $role: Role!, $reason: String) { changeUserRole(id: $id, role: $role, reason: $reason) { `+roleChangeFields+` } }`,
		map[string]any{"id": id, "role": role, "reason": reason}, &out)
	if err != nil {
		return nil, err
	}
	return &out.ChangeUserRole, nil
}

// RoleHistory returns a user's role changes, newest first.
func (s *Session) RoleHistory(ctx context.Context, userID string) ([]RoleChange, error) {
	var out struct {
		RoleHistory []RoleChange `json:"roleHistory"`
	}
	err := s.Query(ctx, `query($id: ID!) { roleHistory(userId: $id) { `+roleChangeFields+` } }`,
		map[string]any{"id": userID}, &out)
	if err != nil {
		return nil, err
	}
	return out.RoleHistory, nil
}

// SetUserActive activates or deactivates a user.
func (s *Session) SetUserActive(ctx context.Context, id string, active bool) (*User, error) {
	var out struct {
		SetUserActive User `json:"setUserActive"`
	}
	err := s.Query(ctx, `mutation($id: ID!, $active: Boolean!) { setUserActive(id: $id, active: $active) { `+userFields+` } }`,
		map[string]any{"id": id, "active": active}, &out)
	if err != nil {
		return nil, err
	}
	return &out.SetUserActive, nil
}

// DeleteUser deletes a user. mode is SOFT or HARD.
func (s *Session) DeleteUser(ctx context.Context, id, mode string) error {
	return s.Query(ctx, `mutation($id: ID!, $mode: DeleteMode) { deleteUser(id: $id, mode: $mode) }`,
		map[string]any{"id": id, "mode": enumOrNil(mode)}, nil)
}
