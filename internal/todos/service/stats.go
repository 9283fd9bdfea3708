package service

import (
	"context"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
)

// Stats is the dashboard view. Users is only filled in for administrators.
type Stats struct {
	Todos domain.TodoStats
	Users *domain.UserStats
}

type StatsService struct {
	Store store.Store
}

// Stats counts the actor's own todos, or every todo for administrators.
func (s *StatsService) Stats(ctx context.Context, actor policy.Actor) (Stats, error) {
	if err := requireActor(actor); err != nil {
		return Stats{}, err
	}

	owner := actor.ID
	admin := actor.Role >= domain.RoleAdmin
	if admin {
		owner = ""
	}

	todos, err := s.Store.Todos().Stats(ctx, owner, time.Now())
	if err != nil {
		return Stats{}, err
	}
	out := Stats{Todos: todos}

	if admin {
		users, err := s.Store.Users().Stats(ctx)
		if err != nil {
			return Stats{}, err
		}
		out.Users = &users
	}
	return out, nil
}
