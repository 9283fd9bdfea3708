package sqlite

import (
	"database/sql"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
)

const userColumns = "id, email, password_hash, full_name, role, is_active, created_by_id, created_at, updated_at, deleted_at, deleted_by_id"

type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FullName     string         `db:"full_name"`
	Role         int64          `db:"role"`
	IsActive     bool           `db:"is_active"`
	CreatedByID  sql.NullString `db:"created_by_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    sql.NullTime   `db:"deleted_at"`
	DeletedByID  sql.NullString `db:"deleted_by_id"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		Role:         domain.Role(r.Role),
		IsActive:     r.IsActive,
		CreatedByID:  mapNullStringPtr(r.CreatedByID),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		Deletable: domain.Deletable{
			DeletedAt:   mapNullTimePtr(r.DeletedAt),
			DeletedByID: mapNullStringPtr(r.DeletedByID),
		},
	}
}

const todoColumns = "id, title, description, priority, status, due_date, owner_id, is_completed, completed_at, created_at, updated_at, deleted_at, deleted_by_id, delete_reason"

type todoRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	Priority     int64          `db:"priority"`
	Status       string         `db:"status"`
	DueDate      sql.NullTime   `db:"due_date"`
	OwnerID      string         `db:"owner_id"`
	IsCompleted  bool           `db:"is_completed"`
	CompletedAt  sql.NullTime   `db:"completed_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    sql.NullTime   `db:"deleted_at"`
	DeletedByID  sql.NullString `db:"deleted_by_id"`
	DeleteReason sql.NullString `db:"delete_reason"`
}

func (r todoRow) toDomain() domain.Todo {
	return domain.Todo{
		ID:           r.ID,
		Title:        r.Title,
		Description:  mapNullStringPtr(r.Description),
		Priority:     domain.Priority(r.Priority),
		Status:       domain.Status(r.Status),
		DueDate:      mapNullTimePtr(r.DueDate),
		OwnerID:      r.OwnerID,
		IsCompleted:  r.IsCompleted,
		CompletedAt:  mapNullTimePtr(r.CompletedAt),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		DeleteReason: mapNullStringPtr(r.DeleteReason),
		Deletable: domain.Deletable{
			DeletedAt:   mapNullTimePtr(r.DeletedAt),
			DeletedByID: mapNullStringPtr(r.DeletedByID),
		},
	}
}

type roleChangeRow struct {
	ID          string         `db:"id"`
	UserID      sql.NullString `db:"user_id"`
	OldRole     int64          `db:"old_role"`
	NewRole     int64          `db:"new_role"`
	ChangedByID sql.NullString `db:"changed_by_id"`
	ChangedAt   time.Time      `db:"changed_at"`
	Reason      sql.NullString `db:"reason"`
}

func (r roleChangeRow) toDomain() domain.RoleChange {
	return domain.RoleChange{
		ID:          r.ID,
		UserID:      mapNullString(r.UserID),
		OldRole:     domain.Role(r.OldRole),
		NewRole:     domain.Role(r.NewRole),
		ChangedByID: mapNullString(r.ChangedByID),
		ChangedAt:   r.ChangedAt.UTC(),
		Reason:      mapNullStringPtr(r.Reason),
	}
}

type refreshTokenRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r refreshTokenRow) toDomain() domain.RefreshToken {
	return domain.RefreshToken{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		ExpiresAt: r.ExpiresAt.UTC(),
		Revoked:   r.Revoked,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

// Times are always written in UTC so text comparison in SQL orders them.
func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
