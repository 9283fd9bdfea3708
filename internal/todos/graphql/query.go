package graphql

import (
	"context"
	"errors"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	graphqlgo "github.com/graph-gophers/graphql-go"
)

type userFilterInput struct {
	Role           *string
	IsActive       *bool
	IncludeDeleted *bool
	Search         *string
	Limit          *int32
	Offset         *int32
}

type todoFilterInput struct {
	OwnerID        *graphqlgo.ID
	Status         *string
	Priority       *string
	IsCompleted    *bool
	Overdue        *bool
	IncludeDeleted *bool
	Limit          *int32
	Offset         *int32
}

// Me resolves to null for anonymous callers.
func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	actor := policy.ActorFromContext(ctx)
	if !actor.Authenticated() {
		return nil, nil
	}

	u, err := r.UserService.Get(ctx, actor, actor.ID, false)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, nil
		}
		return nil, mapError(ctx, err)
	}
	return &userResolver{root: r, u: u}, nil
}

func (r *Resolver) User(ctx context.Context, args struct {
	ID             graphqlgo.ID
	IncludeDeleted *bool
}) (*userResolver, error) {
	u, err := r.UserService.Get(ctx, policy.ActorFromContext(ctx), string(args.ID), deref(args.IncludeDeleted))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, nil
		}
		return nil, mapError(ctx, err)
	}
	return &userResolver{root: r, u: u}, nil
}

func (r *Resolver) Users(ctx context.Context, args struct{ Filter *userFilterInput }) ([]*userResolver, error) {
	var q service.UserQuery
	if f := args.Filter; f != nil {
		if f.Role != nil {
			role, err := domain.ParseRole(*f.Role)
			if err != nil {
				return nil, badInput(err.Error())
			}
			q.Role = &role
		}
		q.IsActive = f.IsActive
		q.IncludeDeleted = deref(f.IncludeDeleted)
		q.Search = deref(f.Search)

		var err error
		if q.Limit, q.Offset, err = page(f.Limit, f.Offset); err != nil {
			return nil, err
		}
	}

	users, err := r.UserService.List(ctx, policy.ActorFromContext(ctx), q)
	if err != nil {
		return nil, mapError(ctx, err)
	}

	out := make([]*userResolver, 0, len(users))
	for _, u := range users {
		out = append(out, &userResolver{root: r, u: u})
	}
	return out, nil
}

func (r *Resolver) RoleHistory(ctx context.Context, args struct{ UserID graphqlgo.ID }) ([]*roleChangeResolver, error) {
	history, err := r.UserService.RoleHistory(ctx, policy.ActorFromContext(ctx), string(args.UserID))
	if err != nil {
		return nil, mapError(ctx, err)
	}

	out := make([]*roleChangeResolver, 0, len(history))
	for _, c := range history {
		out = append(out, &roleChangeResolver{c: c})
	}
	return out, nil
}

func (r *Resolver) Todo(ctx context.Context, args struct {
	ID             graphqlgo.ID
	IncludeDeleted *bool
}) (*todoResolver, error) {
	t, err := r.TodoService.Get(ctx, policy.ActorFromContext(ctx), string(args.ID), deref(args.IncludeDeleted))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, nil
		}
		return nil, mapError(ctx, err)
	}
	return &todoResolver{root: r, t: t}, nil
}

func (r *Resolver) Todos(ctx context.Context, args struct{ Filter *todoFilterInput }) ([]*todoResolver, error) {
	var q service.TodoQuery
	if f := args.Filter; f != nil {
		if f.OwnerID != nil {
			q.OwnerID = string(*f.OwnerID)
		}
		if f.Status != nil {
			st := domain.Status(*f.Status)
			q.Status = &st
		}
		if f.Priority != nil {
			p, err := domain.ParsePriority(*f.Priority)
			if err != nil {
				return nil, badInput(err.Error())
			}
			q.Priority = &p
		}
		q.IsCompleted = f.IsCompleted
		q.Overdue = deref(f.Overdue)
		q.IncludeDeleted = deref(f.IncludeDeleted)

		var err error
		if q.Limit, q.Offset, err = page(f.Limit, f.Offset); err != nil {
			return nil, err
		}
	}

	todos, err := r.TodoService.List(ctx, policy.ActorFromContext(ctx), q)
	if err != nil {
		return nil, mapError(ctx, err)
	}

	out := make([]*todoResolver, 0, len(todos))
	for _, t := range todos {
		out = append(out, &todoResolver{root: r, t: t})
	}
	return out, nil
}

func (r *Resolver) Stats(ctx context.Context) (*statsResolver, error) {
	s, err := r.StatsService.Stats(ctx, policy.ActorFromContext(ctx))
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &statsResolver{s: s}, nil
}

func page(limit, offset *int32) (uint64, uint64, error) {
	var l, o uint64
	if limit != nil {
		if *limit < 0 {
			return 0, 0, badInput("limit must not be negative")
		}
		l = uint64(*limit)
	}
	if offset != nil {
		if *offset < 0 {
			return 0, 0, badInput("offset must not be negative")
		}
		o = uint64(*offset)
	}
	return l, o, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
