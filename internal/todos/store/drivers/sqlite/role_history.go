package sqlite

import (
	"context"
	"fmt"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/jmoiron/sqlx"
)

type roleHistoryRepo struct {
	q sqlx.ExtContext
}

func (r *roleHistoryRepo) AppendRoleChange(ctx context.Context, c domain.RoleChange) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" || c.UserID == "" {
		return fmt.Errorf("%w: role change without id or subject", domain.ErrInvariantViolation)
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO user_role_history (id, user_id, old_role, new_role, changed_by_id, changed_at, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, int(c.OldRole), int(c.NewRole),
		mapStringNull(c.ChangedByID), c.ChangedAt.UTC(), mapOptionalString(c.Reason),
	)
	return err
}

func (r *roleHistoryRepo) ListRoleChanges(ctx context.Context, userID string) ([]domain.RoleChange, error) {
	var rows []roleChangeRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id, user_id, old_role, new_role, changed_by_id, changed_at, reason
		FROM user_role_history
		WHERE user_id = ?
		ORDER BY changed_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list role history: %w", err)
	}

	out := make([]domain.RoleChange, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
