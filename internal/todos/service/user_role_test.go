package service

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

var errHistoryWrite = errors.New("history write failed")

// brokenHistoryStore hands out transactions whose role history refuses writes.
type brokenHistoryStore struct {
	store.Store
}

func (s brokenHistoryStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(brokenHistoryTx{tx})
	})
}

// innerTx names the embedded transaction so the field does not shadow
// the Tx method that store.Tx inherits from store.Store.
type innerTx = store.Tx

type brokenHistoryTx struct {
	innerTx
}

func (tx brokenHistoryTx) RoleHistory() store.RoleHistory {
	return brokenHistory{tx.innerTx.RoleHistory()}
}

type brokenHistory struct {
	store.RoleHistory
}

func (brokenHistory) AppendRoleChange(context.Context, domain.RoleChange) error {
	return errHistoryWrite
}

func TestUserService_ChangeRoleRollsBackWithoutHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, root := env.seed(t, "root@example.com", domain.RoleSuperadmin)
	u, _ := env.seed(t, "u@example.com", domain.RoleUser)

	users := &UserService{Store: brokenHistoryStore{env.store}, Hasher: env.hasher}

	_, err := users.ChangeRole(ctx, root, u.ID, domain.RoleAdmin, nil)
	require.ErrorIs(t, err, errHistoryWrite)

	got, err := env.store.Users().GetUserByID(ctx, u.ID, store.Live)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, got.Role)
	require.Equal(t, u.UpdatedAt.Unix(), got.UpdatedAt.Unix())

	history, err := env.users.RoleHistory(ctx, root, u.ID)
	require.NoError(t, err)
	require.Empty(t, history)

	// The real store still accepts the same change.
	_, err = env.users.ChangeRole(ctx, root, u.ID, domain.RoleAdmin, nil)
	require.NoError(t, err)
}

func TestUserService_ChangeRoleConcurrent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Concurrent writers need a shared file; ":memory:" is one connection.
	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "todos.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	env.store = st
	env.users = &UserService{Store: st, Hasher: env.hasher}

	_, root := env.seed(t, "root@example.com", domain.RoleSuperadmin)
	u, _ := env.seed(t, "u@example.com", domain.RoleUser)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := range workers {
		target := domain.RoleAdmin
		if i%2 == 1 {
			target = domain.RoleUser
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := env.users.ChangeRole(ctx, root, u.ID, target, nil)
			if err != nil {
				// Losing a race or asking for the current role are the only
				// acceptable refusals.
				if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrForbidden) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Positive(t, succeeded)

	history, err := env.users.RoleHistory(ctx, root, u.ID)
	require.NoError(t, err)
	require.Len(t, history, succeeded)

	// Oldest first, every entry starts where the previous one ended.
	slices.Reverse(history)
	prev := domain.RoleUser
	for _, c := range history {
		require.Equal(t, prev, c.OldRole)
		require.NotEqual(t, c.OldRole, c.NewRole)
		require.Equal(t, root.ID, c.ChangedByID)
		prev = c.NewRole
	}

	got, err := st.Users().GetUserByID(ctx, u.ID, store.Live)
	require.NoError(t, err)
	require.Equal(t, prev, got.Role)
}
