package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store/drivers/sqlite"
	"github.com/AD0791/graphql-todos-backend/pkg/cryptox"
	"github.com/AD0791/graphql-todos-backend/pkg/jwtx"
	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/stretchr/testify/require"
)

const password = "Passw0rd!"

type harness struct {
	schema *graphqlgo.Schema
	tokens *service.TokenService
	boot   *service.BootstrapService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHMAC("HS256", []byte(strings.Repeat("k", jwtx.MinSecretLength)), "graphql-test")
	require.NoError(t, err)
	hasher := cryptox.NewHasher("pepper")

	tokens := &service.TokenService{
		Store:      st,
		Hasher:     hasher,
		Signer:     signer,
		Issuer:     "graphql-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	schema, err := NewSchema(&Resolver{
		TokenService: tokens,
		UserService:  &service.UserService{Store: st, Hasher: hasher},
		TodoService:  &service.TodoService{Store: st},
		StatsService: &service.StatsService{Store: st},
	})
	require.NoError(t, err)

	return &harness{
		schema: schema,
		tokens: tokens,
		boot:   &service.BootstrapService{Store: st, Hasher: hasher},
	}
}

// signup registers email through the API and returns a context carrying its actor.
func (h *harness) signup(t *testing.T, email string) context.Context {
	t.Helper()

	var out struct {
		Signup struct {
			AccessToken string
			User        struct{ ID string }
		}
	}
	h.exec(t, context.Background(), `mutation($email: String!, $pw: String!) {
		signup(input: {email: $email, password: $pw, fullName: "Test"}) { accessToken user { id } }
	}`, map[string]any{"email": email, "pw": password}, &out)

	return h.as(t, out.Signup.AccessToken)
}

func (h *harness) as(t *testing.T, accessToken string) context.Context {
	t.Helper()

	actor, err := h.tokens.Resolve(context.Background(), accessToken)
	require.NoError(t, err)
	return policy.WithActor(context.Background(), actor)
}

func (h *harness) superadmin(t *testing.T) (context.Context, domain.User) {
	t.Helper()

	u, _, err := h.boot.EnsureSuperadmin(context.Background(), service.SuperadminSeed{
		Email: "root@example.com", Password: password, FullName: "Root",
	})
	require.NoError(t, err)
	return policy.WithActor(context.Background(), policy.ActorFromUser(u)), u
}

func (h *harness) exec(t *testing.T, ctx context.Context, query string, vars map[string]any, out any) {
	t.Helper()

	resp := h.schema.Exec(ctx, query, "", vars)
	require.Empty(t, resp.Errors)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
}

// code runs query and returns the extension code of its first error.
func (h *harness) code(t *testing.T, ctx context.Context, query string, vars map[string]any) string {
	t.Helper()

	resp := h.schema.Exec(ctx, query, "", vars)
	require.NotEmpty(t, resp.Errors, "expected an error")
	code, _ := resp.Errors[0].Extensions["code"].(string)
	return code
}

func TestMe(t *testing.T) {
	h := newHarness(t)

	var anon struct{ Me *struct{ ID string } }
	h.exec(t, context.Background(), `{ me { id } }`, nil, &anon)
	require.Nil(t, anon.Me)

	ctx := h.signup(t, "alice@example.com")

	var out struct {
		Me struct {
			Email     string
			Role      string
			IsActive  bool
			TodoCount int
		}
	}
	h.exec(t, ctx, `{ me { email role isActive todoCount } }`, nil, &out)
	require.Equal(t, "alice@example.com", out.Me.Email)
	require.Equal(t, "USER", out.Me.Role)
	require.True(t, out.Me.IsActive)
	require.Zero(t, out.Me.TodoCount)
}

func TestAuthMutations(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "alice@example.com")

	var login struct {
		Login struct {
			RefreshToken string
			TokenType    string
			ExpiresIn    int
		}
	}
	h.exec(t, context.Background(), `mutation { login(email: "alice@example.com", password: "Passw0rd!") { refreshToken tokenType expiresIn } }`, nil, &login)
	require.Equal(t, "Bearer", login.Login.TokenType)
	require.Equal(t, 60, login.Login.ExpiresIn)

	require.Equal(t, CodeUnauthenticated, h.code(t, context.Background(),
		`mutation { login(email: "alice@example.com", password: "nope") { accessToken } }`, nil))

	require.Equal(t, CodeConflict, h.code(t, context.Background(),
		`mutation { signup(input: {email: "alice@example.com", password: "Passw0rd!", fullName: "Dup"}) { accessToken } }`, nil))

	require.Equal(t, CodeBadUserInput, h.code(t, context.Background(),
		`mutation { signup(input: {email: "bob@example.com", password: "weak", fullName: "Bob"}) { accessToken } }`, nil))

	vars := map[string]any{"rt": login.Login.RefreshToken}
	var refreshed struct{ RefreshToken struct{ RefreshToken string } }
	h.exec(t, context.Background(), `mutation($rt: String!) { refreshToken(refreshToken: $rt) { refreshToken } }`, vars, &refreshed)
	require.NotEqual(t, login.Login.RefreshToken, refreshed.RefreshToken.RefreshToken)

	require.Equal(t, CodeUnauthenticated, h.code(t, context.Background(),
		`mutation($rt: String!) { refreshToken(refreshToken: $rt) { refreshToken } }`, vars))

	var logout struct{ Logout bool }
	h.exec(t, context.Background(), `mutation($rt: String!) { logout(refreshToken: $rt) }`,
		map[string]any{"rt": refreshed.RefreshToken.RefreshToken}, &logout)
	require.True(t, logout.Logout)
}

func TestTodoLifecycle(t *testing.T) {
	h := newHarness(t)
	alice := h.signup(t, "alice@example.com")
	bob := h.signup(t, "bob@example.com")

	require.Equal(t, CodeUnauthenticated, h.code(t, context.Background(),
		`mutation { createTodo(input: {title: "x"}) { id } }`, nil))

	var created struct {
		CreateTodo struct {
			ID       string
			Priority string
			Status   string
			Owner    struct{ Email string }
		}
	}
	h.exec(t, alice, `mutation { createTodo(input: {title: "write tests", priority: HIGH}) { id priority status owner { email } } }`, nil, &created)
	require.Equal(t, "HIGH", created.CreateTodo.Priority)
	require.Equal(t, "PENDING", created.CreateTodo.Status)
	require.Equal(t, "alice@example.com", created.CreateTodo.Owner.Email)

	id := map[string]any{"id": created.CreateTodo.ID}

	require.Equal(t, CodeForbidden, h.code(t, bob,
		`mutation($id: ID!) { completeTodo(id: $id) { id } }`, id))

	var peek struct{ Todo *struct{ ID string } }
	h.exec(t, bob, `query($id: ID!) { todo(id: $id) { id } }`, id, &peek)
	require.Nil(t, peek.Todo)

	var done struct {
		CompleteTodo struct {
			IsCompleted bool
			CompletedAt *string
			Status      string
		}
	}
	h.exec(t, alice, `mutation($id: ID!) { completeTodo(id: $id) { isCompleted completedAt status } }`, id, &done)
	require.True(t, done.CompleteTodo.IsCompleted)
	require.NotNil(t, done.CompleteTodo.CompletedAt)
	require.Equal(t, "COMPLETED", done.CompleteTodo.Status)

	var list struct{ Todos []struct{ ID string } }
	h.exec(t, bob, `{ todos { id } }`, nil, &list)
	require.Empty(t, list.Todos)

	h.exec(t, alice, `{ todos(filter: {isCompleted: true}) { id } }`, nil, &list)
	require.Len(t, list.Todos, 1)

	require.Equal(t, CodeForbidden, h.code(t, alice,
		`mutation($id: ID!) { deleteTodo(id: $id, mode: HARD) }`, id))

	var del struct{ DeleteTodo bool }
	h.exec(t, alice, `mutation($id: ID!) { deleteTodo(id: $id, reason: "obsolete") }`, id, &del)
	require.True(t, del.DeleteTodo)

	require.Equal(t, CodeNotFound, h.code(t, alice,
		`mutation($id: ID!) { deleteTodo(id: $id) }`, id))

	var gone struct{ Todo *struct{ ID string } }
	h.exec(t, alice, `query($id: ID!) { todo(id: $id) { id } }`, id, &gone)
	require.Nil(t, gone.Todo)
}

func TestRoleManagement(t *testing.T) {
	h := newHarness(t)
	root, _ := h.superadmin(t)
	h.signup(t, "u@example.com")

	var users struct {
		Users []struct {
			ID    string
			Email string
		}
	}
	h.exec(t, root, `{ users(filter: {role: USER}) { id email } }`, nil, &users)
	require.Len(t, users.Users, 1)
	subject := users.Users[0].ID

	vars := map[string]any{"id": subject}

	var change struct {
		ChangeUserRole struct {
			OldRole     string
			NewRole     string
			IsPromotion bool
			Description string
			Reason      *string
		}
	}
	h.exec(t, root, `mutation($id: ID!) { changeUserRole(id: $id, role: ADMIN, reason: "promoted") { oldRole newRole isPromotion description reason } }`, vars, &change)
	require.Equal(t, "USER", change.ChangeUserRole.OldRole)
	require.Equal(t, "ADMIN", change.ChangeUserRole.NewRole)
	require.True(t, change.ChangeUserRole.IsPromotion)
	require.Equal(t, "USER → ADMIN (promotion)", change.ChangeUserRole.Description)
	require.Equal(t, "promoted", *change.ChangeUserRole.Reason)

	require.Equal(t, CodeForbidden, h.code(t, root,
		`mutation($id: ID!) { changeUserRole(id: $id, role: ADMIN) { id } }`, vars))

	var history struct{ RoleHistory []struct{ NewRole string } }
	h.exec(t, root, `query($id: ID!) { roleHistory(userId: $id) { newRole } }`, vars, &history)
	require.Len(t, history.RoleHistory, 1)

	var stats struct {
		Stats struct {
			Users *struct{ Admins, Superadmins int }
		}
	}
	h.exec(t, root, `{ stats { users { admins superadmins } } }`, nil, &stats)
	require.NotNil(t, stats.Stats.Users)
	require.Equal(t, 1, stats.Stats.Users.Admins)
	require.Equal(t, 1, stats.Stats.Users.Superadmins)

	var deleted struct{ DeleteUser bool }
	h.exec(t, root, `mutation($id: ID!) { deleteUser(id: $id) }`, vars, &deleted)
	require.True(t, deleted.DeleteUser)

	var again struct {
		User *struct {
			IsDeleted bool
			IsActive  bool
		}
	}
	h.exec(t, root, `query($id: ID!) { user(id: $id, includeDeleted: true) { isDeleted isActive } }`, vars, &again)
	require.NotNil(t, again.User)
	require.True(t, again.User.IsDeleted)
	require.False(t, again.User.IsActive)
}

func TestUsersRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := h.signup(t, "u@example.com")

	require.Equal(t, CodeForbidden, h.code(t, ctx, `{ users { id } }`, nil))
	require.Equal(t, CodeUnauthenticated, h.code(t, context.Background(), `{ stats { todos { total } } }`, nil))
	require.Equal(t, CodeBadUserInput, h.code(t, ctx, `{ todos(filter: {limit: -1}) { id } }`, nil))
}

func TestMapError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cases := []struct {
		in   error
		want string
	}{
		{service.ErrUnauthenticated, CodeUnauthenticated},
		{service.ErrInvalidCredentials, CodeUnauthenticated},
		{policy.ErrAuthorizationDenied, CodeForbidden},
		{fmt.Errorf("%w: gone", service.ErrNotFound), CodeNotFound},
		{fmt.Errorf("%w: bad title", service.ErrInvalidInput), CodeBadUserInput},
		{service.ErrEmailTaken, CodeConflict},
		{service.ErrConflict, CodeConflict},
		{service.ErrRateLimited, CodeRateLimited},
		{fmt.Errorf("write: %w", domain.ErrInvariantViolation), CodeInternal},
		{errors.New("disk on fire"), CodeInternal},
	}

	for _, tc := range cases {
		var gqlErr *Error
		require.ErrorAs(t, mapError(ctx, tc.in), &gqlErr)
		require.Equal(t, tc.want, gqlErr.Code, tc.in.Error())
		require.Equal(t, tc.want, gqlErr.Extensions()["code"])
	}

	var gqlErr *Error
	require.ErrorAs(t, mapError(ctx, errors.New("secret dsn")), &gqlErr)
	require.Equal(t, "internal error", gqlErr.Message)

	require.ErrorAs(t, mapError(ctx, fmt.Errorf("%w: title must be 1 to 200 characters", service.ErrInvalidInput)), &gqlErr)
	require.Equal(t, "title must be 1 to 200 characters", gqlErr.Message)
}
