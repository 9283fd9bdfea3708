package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
	"github.com/AD0791/graphql-todos-backend/pkg/cryptox"
	"github.com/AD0791/graphql-todos-backend/pkg/idx"
	"github.com/AD0791/graphql-todos-backend/pkg/slogx"
)

var ErrBootstrapConflict = errors.New("bootstrap email belongs to a non-superadmin identity")

type SuperadminSeed struct {
	Email    string
	Password string
	FullName string
}

type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
}

// EnsureSuperadmin creates the configured superadmin unless an identity
// with that email already exists. It reports whether a row was written.
// An existing superadmin is left untouched, password included.
func (s *BootstrapService) EnsureSuperadmin(ctx context.Context, seed SuperadminSeed) (domain.User, bool, error) {
	l := slogx.FromContext(ctx)

	email, err := normalizeEmail(seed.Email)
	if err != nil {
		return domain.User{}, false, err
	}
	name, err := normalizeFullName(seed.FullName)
	if err != nil {
		return domain.User{}, false, err
	}
	if err := ValidatePassword(seed.Password); err != nil {
		return domain.User{}, false, err
	}

	existing, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsSuperadmin() {
			l.Error("bootstrap email is taken by a lower role",
				slog.String("user_id", existing.ID),
				slog.String("role", existing.Role.String()),
			)
			return existing, false, ErrBootstrapConflict
		}
		l.Debug("superadmin already present", slog.String("user_id", existing.ID))
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, false, err
	}

	hash, err := s.Hasher.Hash(seed.Password)
	if err != nil {
		l.Error("failed to hash superadmin password", slog.Any("error", err))
		return domain.User{}, false, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
		Role:         domain.RoleSuperadmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		// A soft-deleted identity still holds the address.
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, false, ErrBootstrapConflict
		}
		return domain.User{}, false, err
	}

	l.Info("superadmin created", slog.String("user_id", u.ID))
	return u, true, nil
}
