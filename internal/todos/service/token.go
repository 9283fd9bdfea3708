package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
	"github.com/AD0791/graphql-todos-backend/pkg/cryptox"
	"github.com/AD0791/graphql-todos-backend/pkg/httpx"
	"github.com/AD0791/graphql-todos-backend/pkg/idx"
	"github.com/AD0791/graphql-todos-backend/pkg/jwtx"
	"github.com/AD0791/graphql-todos-backend/pkg/slogx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AuthResult is handed back by every credential exchange.
type AuthResult struct {
	User   domain.User
	Tokens domain.TokenPair
}

type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// TokenService authenticates identities, issues and rotates tokens, and
// resolves bearer tokens back into actors.
type TokenService struct {
	Store      store.Store
	Hasher     *cryptox.Hasher
	Signer     *jwtx.HMACSigner
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Limiter throttles signup and login attempts per client IP, and
	// RefreshLimiter throttles refresh rotation the same way. Nil disables
	// either check.
	Limiter        *httpx.Limiter
	RefreshLimiter *httpx.Limiter
}

var _ policy.IdentityResolver = (*TokenService)(nil)

// Signup registers a USER identity with no creator and signs it in.
func (s *TokenService) Signup(ctx context.Context, in SignupInput) (_ *AuthResult, err error) {
	ctx, span := startSpan(ctx, "TokenService.Signup")
	defer func() { endSpan(span, err) }()

	if err := throttle(ctx, s.Limiter, "signup"); err != nil {
		return nil, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name, err := normalizeFullName(in.FullName)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     name,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return mapErr(err)
		}
		pair, err = s.issue(ctx, tx, u, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("user signed up", slog.String("user_id", u.ID))
	return &AuthResult{User: u, Tokens: *pair}, nil
}

// Login exchanges an email and password for a token pair. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *TokenService) Login(ctx context.Context, email, password string) (_ *AuthResult, err error) {
	ctx, span := startSpan(ctx, "TokenService.Login")
	defer func() { endSpan(span, err) }()

	l := slogx.FromContext(ctx)

	if err := throttle(ctx, s.Limiter, "login"); err != nil {
		return nil, err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		l.Info("login password verification failed", slog.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		l.Warn("login attempt on inactive user", slog.String("user_id", u.ID))
		return nil, ErrInactiveUser
	}

	now := time.Now().UTC()
	pair, err := s.issue(ctx, s.Store, u, now)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Tokens: *pair}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued in the same transaction. A token can be used once.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (_ *AuthResult, err error) {
	ctx, span := startSpan(ctx, "TokenService.Refresh")
	defer func() { endSpan(span, err) }()

	if err := throttle(ctx, s.RefreshLimiter, "refresh"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fp := cryptox.FingerprintToken(refreshOpaque)

	var result *AuthResult
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if !rt.Usable(now) {
			return ErrInvalidRefresh
		}

		u, err := tx.Users().GetUserByID(ctx, rt.UserID, store.Live)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if !u.IsActive {
			return ErrInactiveUser
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		pair, err := s.issue(ctx, tx, u, now)
		if err != nil {
			return err
		}
		result = &AuthResult{User: u, Tokens: *pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout revokes a refresh token. It reports false when the token was
// unknown or already revoked.
func (s *TokenService) Logout(ctx context.Context, refreshOpaque string) (bool, error) {
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshOpaque), time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Resolve verifies an access token and loads its subject. Identities that
// no longer exist resolve to the anonymous actor.
func (s *TokenService) Resolve(ctx context.Context, bearer string) (policy.Actor, error) {
	claims, err := s.Signer.Verify(bearer)
	if err != nil {
		return policy.Actor{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject, store.Live)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return policy.Actor{}, nil
		}
		return policy.Actor{}, err
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", u.ID))
	return policy.ActorFromUser(u), nil
}

// issue signs an access token and persists a fresh refresh token through q.
func (s *TokenService) issue(ctx context.Context, q store.Store, u domain.User, now time.Time) (*domain.TokenPair, error) {
	claims := jwtx.NewAccessClaims(u.ID, u.Role.String(), u.Email, s.Issuer, s.AccessTTL, now)
	access, err := s.Signer.Sign(claims)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to sign access token", slog.Any("error", err))
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := q.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

func throttle(ctx context.Context, l *httpx.Limiter, op string) error {
	if l == nil {
		return nil
	}
	ip := httpx.ClientIP(ctx)
	if ip == "" {
		return nil
	}
	if ok, _ := l.Allow(op + ":" + ip); !ok {
		slogx.FromContext(ctx).Warn("credential attempt rate limited", slog.String("op", op), slog.String("ip", ip))
		return ErrRateLimited
	}
	return nil
}
