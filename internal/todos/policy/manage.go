package policy

import "github.com/AD0791/graphql-todos-backend/internal/todos/domain"

// CanManageUser reports whether a may change target's attributes. Nobody
// manages themselves through this path, and a removed identity is not
// manageable at all.
func CanManageUser(a Actor, target domain.User) bool {
	if target.ID == a.ID || target.IsDeleted() {
		return false
	}
	return a.CanManage(target.Role)
}

// CanViewUser reports whether a may read target. Identities read themselves;
// administrators read everyone.
func CanViewUser(a Actor, target domain.User) bool {
	if !a.Authenticated() {
		return false
	}
	return target.ID == a.ID || a.Role >= domain.RoleAdmin
}

// CanViewTodo reports whether a may read t.
func CanViewTodo(a Actor, t domain.Todo) bool {
	if !a.Authenticated() {
		return false
	}
	return t.OwnerID == a.ID || a.Role >= domain.RoleAdmin
}

// CanEditTodo reports whether a may change t's content. Only the owner may.
func CanEditTodo(a Actor, t domain.Todo) bool {
	return a.Authenticated() && t.OwnerID == a.ID && !t.IsDeleted()
}

// CanSeeDeleted reports whether a may ask for soft-deleted rows.
func CanSeeDeleted(a Actor) bool {
	return a.Authenticated() && a.Role >= domain.RoleAdmin
}

// CanAssignRole reports whether a may create an identity holding role.
func CanAssignRole(a Actor, role domain.Role) bool {
	return role.Valid() && a.CanManage(role)
}
