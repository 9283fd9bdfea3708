package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type usersRepo struct {
	q sqlx.ExtContext
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string, scope store.Scope) (domain.User, error) {
	b := psql.Select(userColumns).From("users").Where(sq.Eq{"id": id})
	if scope == store.Live {
		b = b.Where("deleted_at IS NULL")
	}
	return r.getOne(ctx, b)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, psql.Select(userColumns).From("users").
		Where(sq.Eq{"email": email}).
		Where("deleted_at IS NULL"))
}

func (r *usersRepo) getOne(ctx context.Context, b sq.SelectBuilder) (domain.User, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return domain.User{}, err
	}

	var row userRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

// likeEscaper makes search input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// listUsersQuery builds the filtered user listing.
func listUsersQuery(f store.UserFilter) sq.SelectBuilder {
	b := psql.Select(userColumns).From("users")

	if f.Scope == store.Live {
		b = b.Where("deleted_at IS NULL")
	}
	if f.Role != nil {
		b = b.Where(sq.Eq{"role": int(*f.Role)})
	}
	if f.IsActive != nil {
		b = b.Where(sq.Eq{"is_active": *f.IsActive})
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		b = b.Where(sq.Or{
			sq.Expr(`email LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`full_name LIKE ? ESCAPE '\'`, pattern),
		})
	}

	return b.OrderBy("created_at DESC", "id DESC").
		Limit(clampLimit(f.Limit)).
		Offset(f.Offset)
}

func (r *usersRepo) ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, error) {
	query, args, err := listUsersQuery(f).ToSql()
	if err != nil {
		return nil, err
	}

	var rows []userRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	if err := u.Deletable.Validate(); err != nil {
		return err
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, role, is_active, created_by_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, int(u.Role), u.IsActive,
		mapOptionalString(u.CreatedByID), u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *usersRepo) UpdateUserProfile(ctx context.Context, id, email, fullName string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE users SET email = ?, full_name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		email, fullName, at.UTC(), id,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return expectOne(res, err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	return expectOne(r.q.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		hash, at.UTC(), id,
	))
}

func (r *usersRepo) SetUserActive(ctx context.Context, id string, active bool, at time.Time) error {
	return expectOne(r.q.ExecContext(ctx, `
		UPDATE users SET is_active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		active, at.UTC(), id,
	))
}

func (r *usersRepo) UpdateUserRole(ctx context.Context, id string, oldRole, newRole domain.Role, at time.Time) error {
	err := expectOne(r.q.ExecContext(ctx, `
		UPDATE users SET role = ?, updated_at = ?
		WHERE id = ? AND role = ? AND deleted_at IS NULL`,
		int(newRole), at.UTC(), id, int(oldRole),
	))
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	// Tell a lost race apart from a missing identity.
	if _, getErr := r.GetUserByID(ctx, id, store.Live); getErr != nil {
		return getErr
	}
	return store.ErrStale
}

func (r *usersRepo) SoftDeleteUser(ctx context.Context, id, actorID string, at time.Time) error {
	return expectOne(r.q.ExecContext(ctx, `
		UPDATE users SET deleted_at = ?, deleted_by_id = ?, is_active = 0, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		at.UTC(), mapStringNull(actorID), at.UTC(), id,
	))
}

func (r *usersRepo) HardDeleteUser(ctx context.Context, id string) error {
	return expectOne(r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.q, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return false, err
	}
	return n == 0, nil
}

type userStatsRow struct {
	Total       int `db:"total"`
	Active      int `db:"active"`
	Deleted     int `db:"deleted"`
	Users       int `db:"users"`
	Admins      int `db:"admins"`
	Superadmins int `db:"superadmins"`
}

func userStatsQuery() sq.SelectBuilder {
	live := "deleted_at IS NULL"
	return psql.Select(
		"COUNT(*) AS total",
		"COALESCE(SUM(CASE WHEN "+live+" AND is_active = 1 THEN 1 ELSE 0 END), 0) AS active",
		"COALESCE(SUM(CASE WHEN deleted_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS deleted",
		"COALESCE(SUM(CASE WHEN "+live+" AND role = 1 THEN 1 ELSE 0 END), 0) AS users",
		"COALESCE(SUM(CASE WHEN "+live+" AND role = 2 THEN 1 ELSE 0 END), 0) AS admins",
		"COALESCE(SUM(CASE WHEN "+live+" AND role = 3 THEN 1 ELSE 0 END), 0) AS superadmins",
	).From("users")
}

// Stats counts every identity; Total includes soft-deleted rows while the
// role and activity counters cover live identities only.
func (r *usersRepo) Stats(ctx context.Context) (domain.UserStats, error) {
	query, args, err := userStatsQuery().ToSql()
	if err != nil {
		return domain.UserStats{}, err
	}

	var row userStatsRow
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		return domain.UserStats{}, fmt.Errorf("user stats: %w", err)
	}

	return domain.UserStats{
		Total:       row.Total,
		Active:      row.Active,
		Inactive:    row.Total - row.Deleted - row.Active,
		Deleted:     row.Deleted,
		Users:       row.Users,
		Admins:      row.Admins,
		Superadmins: row.Superadmins,
	}, nil
}

func clampLimit(n uint64) uint64 {
	switch {
	case n == 0:
		return defaultListLimit
	case n > maxListLimit:
		return maxListLimit
	}
	return n
}
