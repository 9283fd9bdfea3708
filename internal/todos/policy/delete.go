package policy

import (
	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
)

type EntityKind int

const (
	EntityIdentity EntityKind = iota + 1
	EntityTodo
)

func (k EntityKind) String() string {
	switch k {
	case EntityIdentity:
		return "identity"
	case EntityTodo:
		return "todo"
	}
	return "unknown"
}

type DeleteMode int

const (
	DeleteSoft DeleteMode = iota + 1
	DeleteHard
)

func (m DeleteMode) String() string {
	switch m {
	case DeleteSoft:
		return "soft"
	case DeleteHard:
		return "hard"
	}
	return "unknown"
}

type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// DeleteRequest is everything the matrix needs. TargetRole is read for
// identity targets only and IsOwner for todo targets only.
type DeleteRequest struct {
	Actor      Actor
	Kind       EntityKind
	Mode       DeleteMode
	TargetID   string
	TargetRole domain.Role
	IsOwner    bool
}

// Decide evaluates the delete-permission matrix.
func Decide(req DeleteRequest) Decision {
	a := req.Actor
	if !a.Authenticated() {
		return Deny
	}

	if req.Kind == EntityIdentity && req.TargetID == a.ID {
		return Deny
	}

	var allowed bool
	switch a.Role {
	case domain.RoleUser:
		allowed = req.Kind == EntityTodo && req.Mode == DeleteSoft && req.IsOwner
	case domain.RoleAdmin:
		switch req.Kind {
		case EntityIdentity:
			allowed = req.Mode == DeleteSoft
		case EntityTodo:
			allowed = req.Mode == DeleteSoft || req.Mode == DeleteHard
		}
	case domain.RoleSuperadmin:
		allowed = (req.Kind == EntityIdentity || req.Kind == EntityTodo) &&
			(req.Mode == DeleteSoft || req.Mode == DeleteHard)
	}
	if !allowed {
		return Deny
	}

	// Todos carry no role, so the hierarchy gate applies to identities only.
	if req.Kind == EntityIdentity && !a.Role.CanManage(req.TargetRole) {
		return Deny
	}

	return Allow
}

// AuthorizeDelete is Decide expressed as an error.
func AuthorizeDelete(req DeleteRequest) error {
	if Decide(req) == Deny {
		return ErrAuthorizationDenied
	}
	return nil
}
