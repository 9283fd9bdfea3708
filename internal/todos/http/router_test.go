package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/graphql"
	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store/drivers/sqlite"
	"github.com/AD0791/graphql-todos-backend/pkg/cryptox"
	"github.com/AD0791/graphql-todos-backend/pkg/jwtx"
	"github.com/AD0791/graphql-todos-backend/pkg/todosdk"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*Router, *sqlite.Store) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHMAC("HS256", []byte(strings.Repeat("h", jwtx.MinSecretLength)), "http-test")
	require.NoError(t, err)
	hasher := cryptox.NewHasher("pepper")

	tokens := &service.TokenService{
		Store:      st,
		Hasher:     hasher,
		Signer:     signer,
		Issuer:     "http-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
	schema, err := graphql.NewSchema(&graphql.Resolver{
		TokenService: tokens,
		UserService:  &service.UserService{Store: st, Hasher: hasher},
		TodoService:  &service.TodoService{Store: st},
		StatsService: &service.StatsService{Store: st},
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter("todos", "test", "development", st, logger, []string{"http://app.example.com"}, DefaultLimits)
	r.Schema = schema
	r.TokenService = tokens
	r.ApplyRoutes()

	return r, st
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func gqlRequest(t *testing.T, token, query string, vars map[string]any) *http.Request {
	t.Helper()

	body, err := json.Marshal(todosdk.Request{Query: query, Variables: vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestSystemEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info todosdk.InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Equal(t, "todos", info.Name)
	require.Equal(t, "/graphql", info.GraphQL)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	for _, path := range []string{"/health", "/livez", "/readyz"} {
		rec := do(t, r, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)

		var health todosdk.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		require.Equal(t, "ok", health.Status)
		require.Equal(t, "test", health.Version)
	}

	rec = do(t, r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadyzDegraded(t *testing.T) {
	r, st := newTestRouter(t)
	require.NoError(t, st.Close())

	rec := do(t, r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var health todosdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "unavailable", health.Checks.Database)
}

func TestGraphQLBearerFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, gqlRequest(t, "", `mutation {
		signup(input: {email: "alice@example.com", password: "Passw0rd!", fullName: "Alice"}) { accessToken }
	}`, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var signup struct {
		Data struct {
			Signup struct{ AccessToken string }
		}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	token := signup.Data.Signup.AccessToken
	require.NotEmpty(t, token)

	rec = do(t, r, gqlRequest(t, token, `{ me { email role } }`, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Data struct {
			Me struct{ Email, Role string }
		}
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, "alice@example.com", me.Data.Me.Email)
	require.Equal(t, "USER", me.Data.Me.Role)

	rec = do(t, r, gqlRequest(t, "", `{ me { email } }`, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"data":{"me":null}}`, rec.Body.String())

	rec = do(t, r, gqlRequest(t, "not-a-jwt", `{ me { email } }`, nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := do(t, r, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = do(t, r, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSwaggerDoc(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/graphql")
}
