package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store/drivers/sqlite"
	"github.com/AD0791/graphql-todos-backend/pkg/cryptox"
	"github.com/AD0791/graphql-todos-backend/pkg/idx"
	"github.com/AD0791/graphql-todos-backend/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testPassword = "Passw0rd!"

type testEnv struct {
	store  *sqlite.Store
	hasher *cryptox.Hasher
	tokens *TokenService
	users  *UserService
	todos  *TodoService
	stats  *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHMAC("HS256", []byte(strings.Repeat("s", jwtx.MinSecretLength)), "test-issuer")
	require.NoError(t, err)

	hasher := cryptox.NewHasher("pepper")

	return &testEnv{
		store:  st,
		hasher: hasher,
		tokens: &TokenService{
			Store:      st,
			Hasher:     hasher,
			Signer:     signer,
			Issuer:     "test-issuer",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
		users: &UserService{Store: st, Hasher: hasher},
		todos: &TodoService{Store: st},
		stats: &StatsService{Store: st},
	}
}

// seed inserts an active identity with testPassword and returns it with its actor.
func (e *testEnv) seed(t *testing.T, email string, role domain.Role) (domain.User, policy.Actor) {
	t.Helper()

	hash, err := e.hasher.Hash(testPassword)
	require.NoError(t, err)

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     "Seeded " + role.DisplayName(),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))
	return u, policy.ActorFromUser(u)
}
