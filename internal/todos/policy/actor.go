package policy

import (
	"context"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
)

// Actor is the resolved principal behind a request. The zero value is the
// anonymous actor.
type Actor struct {
	ID     string
	Role   domain.Role
	Active bool
}

// ActorFromUser builds the actor for an identity loaded from storage.
func ActorFromUser(u domain.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Active: u.IsActive && !u.IsDeleted()}
}

func (a Actor) IsAnonymous() bool { return a.ID == "" }

// Authenticated reports whether a may be granted anything. An inactive
// identity is treated exactly like an anonymous one.
func (a Actor) Authenticated() bool {
	return !a.IsAnonymous() && a.Active && a.Role.Valid()
}

// CanManage applies the role hierarchy on behalf of an authenticated actor.
func (a Actor) CanManage(target domain.Role) bool {
	return a.Authenticated() && a.Role.CanManage(target)
}

// IdentityResolver maps a bearer credential to an actor. Signature and
// expiry checks live behind this interface.
type IdentityResolver interface {
	Resolve(ctx context.Context, bearer string) (Actor, error)
}

type actorKey struct{}

// WithActor stores a in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored in ctx, or the anonymous actor.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}
