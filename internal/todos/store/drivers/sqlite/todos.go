package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type todosRepo struct {
	q sqlx.ExtContext
}

func (r *todosRepo) CreateTodo(ctx context.Context, t domain.Todo) error {
	if err := t.Validate(); err != nil {
		return err
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO todos (id, title, description, priority, status, due_date, owner_id,
		                   is_completed, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, mapOptionalString(t.Description), int(t.Priority), string(t.Status),
		mapOptionalTime(t.DueDate), t.OwnerID, t.IsCompleted, mapOptionalTime(t.CompletedAt),
		t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *todosRepo) GetTodoByID(ctx context.Context, id string, scope store.Scope) (domain.Todo, error) {
	b := psql.Select(todoColumns).From("todos").Where(sq.Eq{"id": id})
	if scope == store.Live {
		b = b.Where("deleted_at IS NULL")
	}

	query, args, err := b.ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	var row todoRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		return domain.Todo{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

// openStatuses are the statuses a todo can still be overdue in.
var openStatuses = []string{string(domain.StatusPending), string(domain.StatusInProgress)}

func listTodosQuery(f store.TodoFilter) sq.SelectBuilder {
	b := psql.Select(todoColumns).From("todos")

	if f.Scope == store.Live {
		b = b.Where("deleted_at IS NULL")
	}
	if f.OwnerID != "" {
		b = b.Where(sq.Eq{"owner_id": f.OwnerID})
	}
	if f.Status != nil {
		b = b.Where(sq.Eq{"status": string(*f.Status)})
	}
	if f.Priority != nil {
		b = b.Where(sq.Eq{"priority": int(*f.Priority)})
	}
	if f.IsCompleted != nil {
		b = b.Where(sq.Eq{"is_completed": *f.IsCompleted})
	}
	if f.OverdueAt != nil {
		b = b.Where(sq.And{
			sq.NotEq{"due_date": nil},
			sq.Lt{"due_date": f.OverdueAt.UTC()},
			sq.Eq{"status": openStatuses},
		})
	}

	return b.OrderBy("created_at DESC", "id DESC").
		Limit(clampLimit(f.Limit)).
		Offset(f.Offset)
}

func (r *todosRepo) ListTodos(ctx context.Context, f store.TodoFilter) ([]domain.Todo, error) {
	query, args, err := listTodosQuery(f).ToSql()
	if err != nil {
		return nil, err
	}

	var rows []todoRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	out := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *todosRepo) UpdateTodo(ctx context.Context, t domain.Todo) error {
	if err := t.Validate(); err != nil {
		return err
	}

	return expectOne(r.q.ExecContext(ctx, `
		UPDATE todos
		SET title = ?, description = ?, priority = ?, status = ?, due_date = ?,
		    is_completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		t.Title, mapOptionalString(t.Description), int(t.Priority), string(t.Status),
		mapOptionalTime(t.DueDate), t.IsCompleted, mapOptionalTime(t.CompletedAt), t.UpdatedAt.UTC(),
		t.ID,
	))
}

func (r *todosRepo) SoftDeleteTodo(ctx context.Context, id, actorID string, reason *string, at time.Time) error {
	return expectOne(r.q.ExecContext(ctx, `
		UPDATE todos SET deleted_at = ?, deleted_by_id = ?, delete_reason = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		at.UTC(), mapStringNull(actorID), mapOptionalString(reason), at.UTC(), id,
	))
}

func (r *todosRepo) HardDeleteTodo(ctx context.Context, id string) error {
	return expectOne(r.q.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id))
}

func (r *todosRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n,
		`SELECT COUNT(*) FROM todos WHERE owner_id = ? AND deleted_at IS NULL`, ownerID)
	return n, err
}

type todoStatsRow struct {
	Total      int `db:"total"`
	Pending    int `db:"pending"`
	InProgress int `db:"in_progress"`
	Completed  int `db:"completed"`
	Cancelled  int `db:"cancelled"`
	Overdue    int `db:"overdue"`
}

func todoStatsQuery(ownerID string, now time.Time) sq.SelectBuilder {
	count := func(cond, alias string) string {
		return "COALESCE(SUM(CASE WHEN " + cond + " THEN 1 ELSE 0 END), 0) AS " + alias
	}

	b := psql.Select(
		"COUNT(*) AS total",
		count("status = 'PENDING'", "pending"),
		count("status = 'IN_PROGRESS'", "in_progress"),
		count("status = 'COMPLETED'", "completed"),
		count("status = 'CANCELLED'", "cancelled"),
	).Column(
		sq.Expr("COALESCE(SUM(CASE WHEN due_date IS NOT NULL AND due_date < ? AND status IN ('PENDING', 'IN_PROGRESS') THEN 1 ELSE 0 END), 0) AS overdue", now.UTC()),
	).From("todos").Where("deleted_at IS NULL")

	if ownerID != "" {
		b = b.Where(sq.Eq{"owner_id": ownerID})
	}
	return b
}

func (r *todosRepo) Stats(ctx context.Context, ownerID string, now time.Time) (domain.TodoStats, error) {
	query, args, err := todoStatsQuery(ownerID, now).ToSql()
	if err != nil {
		return domain.TodoStats{}, err
	}

	var row todoStatsRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		return domain.TodoStats{}, fmt.Errorf("todo stats: %w", err)
	}
	return domain.TodoStats(row), nil
}
