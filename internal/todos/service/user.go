package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
	"github.com/AD0791/graphql-todos-backend/pkg/cryptox"
	"github.com/AD0791/graphql-todos-backend/pkg/idx"
	"github.com/AD0791/graphql-todos-backend/pkg/slogx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type UserQuery struct {
	Role           *domain.Role
	IsActive       *bool
	IncludeDeleted bool
	Search         string
	Limit          uint64
	Offset         uint64
}

type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role
	IsActive *bool
}

// UpdateUserInput carries a partial update; nil fields are left alone.
type UpdateUserInput struct {
	Email    *string
	FullName *string
	Password *string
}

type UserService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// Get returns an identity the actor may read. Soft-deleted identities are
// only visible to administrators who ask for them. Identities hidden from the
// actor are reported as ErrNotFound so their existence does not leak.
func (s *UserService) Get(ctx context.Context, actor policy.Actor, id string, includeDeleted bool) (domain.User, error) {
	if err := requireActor(actor); err != nil {
		return domain.User{}, err
	}

	scope := store.Live
	if includeDeleted && policy.CanSeeDeleted(actor) {
		scope = store.WithDeleted
	}

	u, err := s.Store.Users().GetUserByID(ctx, id, scope)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	if !policy.CanViewUser(actor, u) {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, actor policy.Actor, q UserQuery) ([]domain.User, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role < domain.RoleAdmin {
		return nil, ErrForbidden
	}
	if q.Role != nil && !q.Role.Valid() {
		return nil, invalid("unknown role %d", int(*q.Role))
	}

	f := store.UserFilter{
		Role:     q.Role,
		IsActive: q.IsActive,
		Search:   q.Search,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.IncludeDeleted {
		f.Scope = store.WithDeleted
	}

	users, err := s.Store.Users().ListUsers(ctx, f)
	return users, mapErr(err)
}

// Create registers an identity on behalf of actor, who must outrank the
// assigned role.
func (s *UserService) Create(ctx context.Context, actor policy.Actor, in CreateUserInput) (_ domain.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Create")
	defer func() { endSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return domain.User{}, err
	}
	if !in.Role.Valid() {
		return domain.User{}, invalid("unknown role %d", int(in.Role))
	}
	if !policy.CanAssignRole(actor, in.Role) {
		slogx.FromContext(ctx).Warn("role assignment denied",
			slog.String("actor_id", actor.ID),
			slog.String("role", in.Role.String()),
		)
		return domain.User{}, ErrForbidden
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return domain.User{}, err
	}
	name, err := normalizeFullName(in.FullName)
	if err != nil {
		return domain.User{}, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	now := time.Now().UTC()
	creator := actor.ID
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
		Role:         in.Role,
		IsActive:     active,
		CreatedByID:  &creator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, mapErr(err)
	}

	slogx.FromContext(ctx).Info("user created",
		slog.String("user_id", u.ID),
		slog.String("created_by", actor.ID),
		slog.String("role", u.Role.String()),
	)
	return u, nil
}

// Update changes profile fields. Identities may edit themselves; otherwise
// the actor must manage the target.
func (s *UserService) Update(ctx context.Context, actor policy.Actor, id string, in UpdateUserInput) (domain.User, error) {
	if err := requireActor(actor); err != nil {
		return domain.User{}, err
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, id, store.Live)
		if err != nil {
			return mapErr(err)
		}
		if u.ID != actor.ID && !policy.CanManageUser(actor, u) {
			return ErrForbidden
		}

		now := time.Now().UTC()
		if in.Email != nil || in.FullName != nil {
			email, name := u.Email, u.FullName
			if in.Email != nil {
				if email, err = normalizeEmail(*in.Email); err != nil {
					return err
				}
			}
			if in.FullName != nil {
				if name, err = normalizeFullName(*in.FullName); err != nil {
					return err
				}
			}
			if err := tx.Users().UpdateUserProfile(ctx, u.ID, email, name, now); err != nil {
				return mapErr(err)
			}
			u.Email, u.FullName, u.UpdatedAt = email, name, now
		}

		if in.Password != nil {
			if err := ValidatePassword(*in.Password); err != nil {
				return err
			}
			hash, err := s.Hasher.Hash(*in.Password)
			if err != nil {
				return err
			}
			if err := tx.Users().UpdatePasswordHash(ctx, u.ID, hash, now); err != nil {
				return mapErr(err)
			}
			// A new password ends every existing session.
			if err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID, now); err != nil {
				return err
			}
			u.PasswordHash, u.UpdatedAt = hash, now
		}

		out = u
		return nil
	})
	return out, err
}

// SetActive activates or deactivates an identity the actor manages.
func (s *UserService) SetActive(ctx context.Context, actor policy.Actor, id string, active bool) (domain.User, error) {
	if err := requireActor(actor); err != nil {
		return domain.User{}, err
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, id, store.Live)
		if err != nil {
			return mapErr(err)
		}
		if !policy.CanManageUser(actor, u) {
			return ErrForbidden
		}

		now := time.Now().UTC()
		if err := tx.Users().SetUserActive(ctx, u.ID, active, now); err != nil {
			return mapErr(err)
		}
		if !active {
			if err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID, now); err != nil {
				return err
			}
		}

		u.IsActive, u.UpdatedAt = active, now
		out = u
		return nil
	})
	return out, err
}

// ChangeRole applies a role change and records it in the history. The role
// write is a compare-and-set on the role read inside the same transaction,
// so a concurrent change surfaces as ErrConflict instead of a stale entry.
func (s *UserService) ChangeRole(ctx context.Context, actor policy.Actor, id string, newRole domain.Role, reason *string) (_ domain.RoleChange, err error) {
	ctx, span := startSpan(ctx, "UserService.ChangeRole", trace.WithAttributes(
		attribute.String("subject_id", id),
		attribute.String("new_role", newRole.String()),
	))
	defer func() { endSpan(span, err) }()

	l := slogx.FromContext(ctx)

	if err := requireActor(actor); err != nil {
		return domain.RoleChange{}, err
	}
	reason, err = normalizeReason(reason)
	if err != nil {
		return domain.RoleChange{}, err
	}

	var change domain.RoleChange
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		subject, err := tx.Users().GetUserByID(ctx, id, store.WithDeleted)
		if err != nil {
			return mapErr(err)
		}

		updated, c, err := policy.ChangeRole(subject, newRole, actor, reason, time.Now())
		if err != nil {
			if errors.Is(err, policy.ErrAuthorizationDenied) {
				l.Warn("role change denied",
					slog.String("actor_id", actor.ID),
					slog.String("subject_id", subject.ID),
					slog.String("new_role", newRole.String()),
				)
			}
			return mapErr(err)
		}

		if err := tx.Users().UpdateUserRole(ctx, subject.ID, subject.Role, updated.Role, updated.UpdatedAt); err != nil {
			return mapErr(err)
		}

		c.ID = idx.NewAt(c.ChangedAt).String()
		if err := tx.RoleHistory().AppendRoleChange(ctx, c); err != nil {
			if errors.Is(err, domain.ErrInvariantViolation) {
				l.Error("role history invariant violated", slog.Any("error", err))
			}
			return err
		}

		change = c
		return nil
	})
	if err != nil {
		return domain.RoleChange{}, err
	}

	l.Info("user role changed",
		slog.String("subject_id", change.UserID),
		slog.String("actor_id", change.ChangedByID),
		slog.String("change", change.Description()),
	)
	return change, nil
}

// RoleHistory lists a subject's role changes, newest first. Identities read
// their own history; administrators read anyone's.
func (s *UserService) RoleHistory(ctx context.Context, actor policy.Actor, userID string) ([]domain.RoleChange, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if userID != actor.ID && actor.Role < domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.Store.RoleHistory().ListRoleChanges(ctx, userID)
}

// Delete removes an identity per the delete-permission matrix. Soft deletes
// deactivate the identity and revoke its sessions; a repeated soft delete
// reports ErrNotFound and changes nothing.
func (s *UserService) Delete(ctx context.Context, actor policy.Actor, id string, mode policy.DeleteMode) (err error) {
	ctx, span := startSpan(ctx, "UserService.Delete", trace.WithAttributes(
		attribute.String("subject_id", id),
		attribute.String("mode", mode.String()),
	))
	defer func() { endSpan(span, err) }()

	l := slogx.FromContext(ctx)

	if err := requireActor(actor); err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, id, store.WithDeleted)
		if err != nil {
			return mapErr(err)
		}

		req := policy.DeleteRequest{
			Actor:      actor,
			Kind:       policy.EntityIdentity,
			Mode:       mode,
			TargetID:   u.ID,
			TargetRole: u.Role,
		}
		if err := policy.AuthorizeDelete(req); err != nil {
			l.Warn("user delete denied",
				slog.String("actor_id", actor.ID),
				slog.String("subject_id", u.ID),
				slog.String("mode", mode.String()),
			)
			return err
		}

		now := time.Now().UTC()
		switch mode {
		case policy.DeleteSoft:
			if u.IsDeleted() {
				return ErrNotFound
			}
			if err := tx.Users().SoftDeleteUser(ctx, u.ID, actor.ID, now); err != nil {
				return mapErr(err)
			}
			if err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID, now); err != nil {
				return err
			}
		case policy.DeleteHard:
			if err := tx.Users().HardDeleteUser(ctx, u.ID); err != nil {
				return mapErr(err)
			}
		default:
			return invalid("unknown delete mode %d", int(mode))
		}

		l.Info("user deleted",
			slog.String("subject_id", u.ID),
			slog.String("actor_id", actor.ID),
			slog.String("mode", mode.String()),
		)
		return nil
	})
}

// TodoCount counts the live todos owned by userID.
func (s *UserService) TodoCount(ctx context.Context, userID string) (int, error) {
	return s.Store.Todos().CountByOwner(ctx, userID)
}
