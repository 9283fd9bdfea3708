package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
	"github.com/AD0791/graphql-todos-backend/pkg/idx"
	"github.com/AD0791/graphql-todos-backend/pkg/slogx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type TodoQuery struct {
	// OwnerID is honoured for administrators. Other actors only ever see
	// their own todos.
	OwnerID        string
	Status         *domain.Status
	Priority       *domain.Priority
	IsCompleted    *bool
	Overdue        bool
	IncludeDeleted bool
	Limit          uint64
	Offset         uint64
}

type CreateTodoInput struct {
	Title       string
	Description *string
	Priority    *domain.Priority
	DueDate     *time.Time
}

// UpdateTodoInput carries a partial update; nil fields are left alone.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	Status      *domain.Status
	DueDate     *time.Time
	// ClearDueDate removes the due date. It wins over DueDate.
	ClearDueDate bool
}

type TodoService struct {
	Store store.Store
}

func (s *TodoService) Create(ctx context.Context, actor policy.Actor, in CreateTodoInput) (domain.Todo, error) {
	if err := requireActor(actor); err != nil {
		return domain.Todo{}, err
	}

	title, err := normalizeTitle(in.Title)
	if err != nil {
		return domain.Todo{}, err
	}

	priority := domain.PriorityMedium
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return domain.Todo{}, invalid("unknown priority %d", int(*in.Priority))
		}
		priority = *in.Priority
	}

	now := time.Now().UTC()
	t := domain.Todo{
		ID:          idx.New().String(),
		Title:       title,
		Description: trimOptional(in.Description),
		Priority:    priority,
		Status:      domain.StatusPending,
		DueDate:     utcOptional(in.DueDate),
		OwnerID:     actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Todos().CreateTodo(ctx, t); err != nil {
		return domain.Todo{}, mapErr(err)
	}
	return t, nil
}

// Get returns a todo the actor may read.
func (s *TodoService) Get(ctx context.Context, actor policy.Actor, id string, includeDeleted bool) (domain.Todo, error) {
	if err := requireActor(actor); err != nil {
		return domain.Todo{}, err
	}

	scope := store.Live
	if includeDeleted && policy.CanSeeDeleted(actor) {
		scope = store.WithDeleted
	}

	t, err := s.Store.Todos().GetTodoByID(ctx, id, scope)
	if err != nil {
		return domain.Todo{}, mapErr(err)
	}
	if !policy.CanViewTodo(actor, t) {
		// Same answer as a missing row.
		return domain.Todo{}, ErrNotFound
	}
	return t, nil
}

func (s *TodoService) List(ctx context.Context, actor policy.Actor, q TodoQuery) ([]domain.Todo, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	f := store.TodoFilter{
		OwnerID:     q.OwnerID,
		Status:      q.Status,
		Priority:    q.Priority,
		IsCompleted: q.IsCompleted,
		Limit:       q.Limit,
		Offset:      q.Offset,
	}

	if actor.Role < domain.RoleAdmin {
		if q.OwnerID != "" && q.OwnerID != actor.ID {
			return nil, ErrForbidden
		}
		f.OwnerID = actor.ID
	}
	if q.IncludeDeleted {
		if !policy.CanSeeDeleted(actor) {
			return nil, ErrForbidden
		}
		f.Scope = store.WithDeleted
	}
	if q.Status != nil && !q.Status.Valid() {
		return nil, invalid("unknown status %q", string(*q.Status))
	}
	if q.Priority != nil && !q.Priority.Valid() {
		return nil, invalid("unknown priority %d", int(*q.Priority))
	}
	if q.Overdue {
		now := time.Now().UTC()
		f.OverdueAt = &now
	}

	todos, err := s.Store.Todos().ListTodos(ctx, f)
	return todos, mapErr(err)
}

// Update changes a todo's content. Only the owner may.
func (s *TodoService) Update(ctx context.Context, actor policy.Actor, id string, in UpdateTodoInput) (domain.Todo, error) {
	return s.mutate(ctx, actor, id, func(t *domain.Todo, now time.Time) error {
		if in.Title != nil {
			title, err := normalizeTitle(*in.Title)
			if err != nil {
				return err
			}
			t.Title = title
		}
		if in.Description != nil {
			t.Description = trimOptional(in.Description)
		}
		if in.Priority != nil {
			if !in.Priority.Valid() {
				return invalid("unknown priority %d", int(*in.Priority))
			}
			t.Priority = *in.Priority
		}
		switch {
		case in.ClearDueDate:
			t.DueDate = nil
		case in.DueDate != nil:
			t.DueDate = utcOptional(in.DueDate)
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return invalid("unknown status %q", string(*in.Status))
			}
			t.SetStatus(*in.Status, now)
		}
		return nil
	})
}

// Complete marks a todo COMPLETED. Completing twice keeps the first stamp.
func (s *TodoService) Complete(ctx context.Context, actor policy.Actor, id string) (domain.Todo, error) {
	return s.mutate(ctx, actor, id, func(t *domain.Todo, now time.Time) error {
		t.SetStatus(domain.StatusCompleted, now)
		return nil
	})
}

func (s *TodoService) mutate(ctx context.Context, actor policy.Actor, id string, apply func(*domain.Todo, time.Time) error) (domain.Todo, error) {
	if err := requireActor(actor); err != nil {
		return domain.Todo{}, err
	}

	var out domain.Todo
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.Todos().GetTodoByID(ctx, id, store.Live)
		if err != nil {
			return mapErr(err)
		}
		if !policy.CanEditTodo(actor, t) {
			return ErrForbidden
		}

		now := time.Now().UTC()
		if err := apply(&t, now); err != nil {
			return err
		}
		t.UpdatedAt = now

		if err := tx.Todos().UpdateTodo(ctx, t); err != nil {
			return mapErr(err)
		}
		out = t
		return nil
	})
	return out, err
}

// Delete removes a todo per the delete-permission matrix. A repeated soft
// delete reports ErrNotFound and changes nothing.
func (s *TodoService) Delete(ctx context.Context, actor policy.Actor, id string, mode policy.DeleteMode, reason *string) (err error) {
	ctx, span := startSpan(ctx, "TodoService.Delete", trace.WithAttributes(
		attribute.String("todo_id", id),
		attribute.String("mode", mode.String()),
	))
	defer func() { endSpan(span, err) }()

	l := slogx.FromContext(ctx)

	if err := requireActor(actor); err != nil {
		return err
	}
	reason, err = normalizeReason(reason)
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.Todos().GetTodoByID(ctx, id, store.WithDeleted)
		if err != nil {
			return mapErr(err)
		}

		req := policy.DeleteRequest{
			Actor:    actor,
			Kind:     policy.EntityTodo,
			Mode:     mode,
			TargetID: t.ID,
			IsOwner:  t.OwnerID == actor.ID,
		}
		if err := policy.AuthorizeDelete(req); err != nil {
			l.Warn("todo delete denied",
				slog.String("actor_id", actor.ID),
				slog.String("todo_id", t.ID),
				slog.String("mode", mode.String()),
			)
			return err
		}

		switch mode {
		case policy.DeleteSoft:
			if t.IsDeleted() {
				return ErrNotFound
			}
			if err := tx.Todos().SoftDeleteTodo(ctx, t.ID, actor.ID, reason, time.Now().UTC()); err != nil {
				return mapErr(err)
			}
		case policy.DeleteHard:
			if err := tx.Todos().HardDeleteTodo(ctx, t.ID); err != nil {
				return mapErr(err)
			}
		}

		l.Info("todo deleted",
			slog.String("todo_id", t.ID),
			slog.String("actor_id", actor.ID),
			slog.String("mode", mode.String()),
		)
		return nil
	})
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func utcOptional(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
