package graphql

import (
	"context"
	"errors"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	graphqlgo "github.com/graph-gophers/graphql-go"
)

type userResolver struct {
	root *Resolver
	u    domain.User
}

func (r *userResolver) ID() graphqlgo.ID           { return graphqlgo.ID(r.u.ID) }
func (r *userResolver) Email() string              { return r.u.Email }
func (r *userResolver) FullName() string           { return r.u.FullName }
func (r *userResolver) Role() string               { return r.u.Role.String() }
func (r *userResolver) RoleDisplayName() string    { return r.u.Role.DisplayName() }
func (r *userResolver) IsActive() bool             { return r.u.IsActive }
func (r *userResolver) CreatedByID() *graphqlgo.ID { return optionalID(r.u.CreatedByID) }
func (r *userResolver) CreatedAt() graphqlgo.Time  { return graphqlgo.Time{Time: r.u.CreatedAt} }
func (r *userResolver) UpdatedAt() graphqlgo.Time  { return graphqlgo.Time{Time: r.u.UpdatedAt} }
func (r *userResolver) DeletedAt() *graphqlgo.Time { return optionalTime(r.u.DeletedAt) }
func (r *userResolver) DeletedByID() *graphqlgo.ID { return optionalID(r.u.DeletedByID) }
func (r *userResolver) IsDeleted() bool            { return r.u.IsDeleted() }

func (r *userResolver) TodoCount(ctx context.Context) (int32, error) {
	n, err := r.root.UserService.TodoCount(ctx, r.u.ID)
	if err != nil {
		return 0, mapError(ctx, err)
	}
	return int32(n), nil
}

type roleChangeResolver struct {
	c domain.RoleChange
}

func (r *roleChangeResolver) ID() graphqlgo.ID           { return graphqlgo.ID(r.c.ID) }
func (r *roleChangeResolver) UserID() *graphqlgo.ID      { return optionalID(nonEmpty(r.c.UserID)) }
func (r *roleChangeResolver) OldRole() string            { return r.c.OldRole.String() }
func (r *roleChangeResolver) NewRole() string            { return r.c.NewRole.String() }
func (r *roleChangeResolver) ChangedByID() *graphqlgo.ID { return optionalID(nonEmpty(r.c.ChangedByID)) }
func (r *roleChangeResolver) ChangedAt() graphqlgo.Time  { return graphqlgo.Time{Time: r.c.ChangedAt} }
func (r *roleChangeResolver) Reason() *string            { return r.c.Reason }
func (r *roleChangeResolver) IsPromotion() bool          { return r.c.IsPromotion() }
func (r *roleChangeResolver) IsDemotion() bool           { return r.c.IsDemotion() }
func (r *roleChangeResolver) Description() string        { return r.c.Description() }

type todoResolver struct {
	root *Resolver
	t    domain.Todo
}

func (r *todoResolver) ID() graphqlgo.ID             { return graphqlgo.ID(r.t.ID) }
func (r *todoResolver) Title() string                { return r.t.Title }
func (r *todoResolver) Description() *string         { return r.t.Description }
func (r *todoResolver) Priority() string             { return r.t.Priority.String() }
func (r *todoResolver) Status() string               { return string(r.t.Status) }
func (r *todoResolver) DueDate() *graphqlgo.Time     { return optionalTime(r.t.DueDate) }
func (r *todoResolver) OwnerID() graphqlgo.ID        { return graphqlgo.ID(r.t.OwnerID) }
func (r *todoResolver) IsCompleted() bool            { return r.t.IsCompleted }
func (r *todoResolver) CompletedAt() *graphqlgo.Time { return optionalTime(r.t.CompletedAt) }
func (r *todoResolver) IsOverdue() bool              { return r.t.IsOverdue(time.Now()) }
func (r *todoResolver) CreatedAt() graphqlgo.Time    { return graphqlgo.Time{Time: r.t.CreatedAt} }
func (r *todoResolver) UpdatedAt() graphqlgo.Time    { return graphqlgo.Time{Time: r.t.UpdatedAt} }
func (r *todoResolver) DeletedAt() *graphqlgo.Time   { return optionalTime(r.t.DeletedAt) }
func (r *todoResolver) DeletedByID() *graphqlgo.ID   { return optionalID(r.t.DeletedByID) }
func (r *todoResolver) DeleteReason() *string        { return r.t.DeleteReason }
func (r *todoResolver) IsDeleted() bool              { return r.t.IsDeleted() }

// Owner resolves to null when the owner is gone or hidden from the actor.
func (r *todoResolver) Owner(ctx context.Context) (*userResolver, error) {
	u, err := r.root.UserService.Get(ctx, policy.ActorFromContext(ctx), r.t.OwnerID, false)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, mapError(ctx, err)
	}
	return &userResolver{root: r.root, u: u}, nil
}

type todoStatsResolver struct{ s domain.TodoStats }

func (r *todoStatsResolver) Total() int32            { return int32(r.s.Total) }
func (r *todoStatsResolver) Pending() int32          { return int32(r.s.Pending) }
func (r *todoStatsResolver) InProgress() int32       { return int32(r.s.InProgress) }
func (r *todoStatsResolver) Completed() int32        { return int32(r.s.Completed) }
func (r *todoStatsResolver) Cancelled() int32        { return int32(r.s.Cancelled) }
func (r *todoStatsResolver) Overdue() int32          { return int32(r.s.Overdue) }
func (r *todoStatsResolver) CompletionRate() float64 { return r.s.CompletionRate() }

type userStatsResolver struct{ s domain.UserStats }

func (r *userStatsResolver) Total() int32       { return int32(r.s.Total) }
func (r *userStatsResolver) Active() int32      { return int32(r.s.Active) }
func (r *userStatsResolver) Inactive() int32    { return int32(r.s.Inactive) }
func (r *userStatsResolver) Deleted() int32     { return int32(r.s.Deleted) }
func (r *userStatsResolver) Users() int32       { return int32(r.s.Users) }
func (r *userStatsResolver) Admins() int32      { return int32(r.s.Admins) }
func (r *userStatsResolver) Superadmins() int32 { return int32(r.s.Superadmins) }

type statsResolver struct{ s service.Stats }

func (r *statsResolver) Todos() *todoStatsResolver { return &todoStatsResolver{s: r.s.Todos} }

func (r *statsResolver) Users() *userStatsResolver {
	if r.s.Users == nil {
		return nil
	}
	return &userStatsResolver{s: *r.s.Users}
}

type authPayloadResolver struct {
	root *Resolver
	res  *service.AuthResult
}

func (r *authPayloadResolver) AccessToken() string  { return r.res.Tokens.AccessToken }
func (r *authPayloadResolver) RefreshToken() string { return r.res.Tokens.RefreshToken }
func (r *authPayloadResolver) TokenType() string    { return r.res.Tokens.TokenType }
func (r *authPayloadResolver) ExpiresIn() int32     { return int32(r.res.Tokens.ExpiresIn / time.Second) }
func (r *authPayloadResolver) User() *userResolver  { return &userResolver{root: r.root, u: r.res.User} }

func optionalID(s *string) *graphqlgo.ID {
	if s == nil {
		return nil
	}
	id := graphqlgo.ID(*s)
	return &id
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalTime(t *time.Time) *graphqlgo.Time {
	if t == nil {
		return nil
	}
	return &graphqlgo.Time{Time: *t}
}
