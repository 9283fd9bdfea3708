package store

import (
	"context"
	"errors"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStale reports a compare-and-set write that lost a race.
	ErrStale = errors.New("store: stale write")
)

// Store is the root data access interface. Sub-repositories hang off it so a
// transaction can hand out the same repositories bound to itself.
type Store interface {
	Users() Users
	Todos() Todos
	RoleHistory() RoleHistory
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Scope selects whether soft-deleted rows are visible to a read.
type Scope int

const (
	// Live hides soft-deleted rows. It is the default for every read.
	Live Scope = iota
	// WithDeleted includes soft-deleted rows.
	WithDeleted
)

type UserFilter struct {
	Role     *domain.Role
	IsActive *bool
	Scope    Scope
	// Search matches email or full name by substring.
	Search string
	Limit  uint64
	Offset uint64
}

type Users interface {
	GetUserByID(ctx context.Context, id string, scope Scope) (domain.User, error)

	// GetUserByEmail only sees live identities. Email equality is case-sensitive.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	ListUsers(ctx context.Context, f UserFilter) ([]domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken, by a live
	// or a soft-deleted identity.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateUserProfile(ctx context.Context, id, email, fullName string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id, hash string, at time.Time) error
	SetUserActive(ctx context.Context, id string, active bool, at time.Time) error

	// UpdateUserRole sets role to newRole only while it still equals oldRole.
	// It returns ErrStale when another writer got there first.
	UpdateUserRole(ctx context.Context, id string, oldRole, newRole domain.Role, at time.Time) error

	// SoftDeleteUser stamps deletion metadata and deactivates the identity.
	// An identity already deleted is reported as ErrNotFound, untouched.
	SoftDeleteUser(ctx context.Context, id, actorID string, at time.Time) error

	// HardDeleteUser removes the row. Owned todos and refresh tokens cascade,
	// history and creator references are nulled.
	HardDeleteUser(ctx context.Context, id string) error

	IsEmpty(ctx context.Context) (bool, error)
	Stats(ctx context.Context) (domain.UserStats, error)
}

type TodoFilter struct {
	// OwnerID restricts to one owner when non-empty.
	OwnerID     string
	Status      *domain.Status
	Priority    *domain.Priority
	IsCompleted *bool
	// OverdueAt keeps open todos whose due date is before it.
	OverdueAt *time.Time
	Scope     Scope
	Limit     uint64
	Offset    uint64
}

type Todos interface {
	CreateTodo(ctx context.Context, t domain.Todo) error
	GetTodoByID(ctx context.Context, id string, scope Scope) (domain.Todo, error)
	ListTodos(ctx context.Context, f TodoFilter) ([]domain.Todo, error)

	// UpdateTodo writes content, status and completion fields of a live todo.
	UpdateTodo(ctx context.Context, t domain.Todo) error

	// SoftDeleteTodo stamps deletion metadata and the optional reason.
	// A todo already deleted is reported as ErrNotFound, untouched.
	SoftDeleteTodo(ctx context.Context, id, actorID string, reason *string, at time.Time) error
	HardDeleteTodo(ctx context.Context, id string) error

	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// Stats counts live todos, for one owner or for everyone when ownerID is
	// empty. Overdue is evaluated against now.
	Stats(ctx context.Context, ownerID string, now time.Time) (domain.TodoStats, error)
}

type RoleHistory interface {
	// AppendRoleChange writes one history entry. Entries that fail
	// RoleChange.Validate are refused with domain.ErrInvariantViolation.
	AppendRoleChange(ctx context.Context, c domain.RoleChange) error

	// ListRoleChanges returns a subject's history, newest first.
	ListRoleChanges(ctx context.Context, userID string) ([]domain.RoleChange, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked on a live token. Revoking twice
	// reports ErrNotFound, which makes rotation single-use.
	RevokeRefreshToken(ctx context.Context, hash string, at time.Time) error
	RevokeAllUserRefreshTokens(ctx context.Context, userID string, at time.Time) error

	// DeleteStaleRefreshTokens removes expired and revoked tokens and
	// reports how many rows went.
	DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
