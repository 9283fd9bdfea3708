package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	return Config{
		DatabaseFile:         filepath.Join(dir, "todos.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		SecretKey:            strings.Repeat("k", 32),
		Algorithm:            "HS256",
		Issuer:               "app-test",
		AccessTokenMinutes:   5,
		RefreshTokenDays:     1,
		Env:                  EnvDevelopment,
		CORSOrigins:          []string{"http://localhost:3000"},
		SuperadminEmail:      "root@example.com",
		SuperadminPassword:   "Sup3rSecret",
		SuperadminFullName:   "Root",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 8000,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
		RateLimit:            RateLimitConfig{GraphQL: 100, Health: 100, Credentials: 5, Refresh: 20},
	}
}

func TestApplicationWiring(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, cfg.Validate())

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	created, err := app.EnsureSuperadmin(context.Background())
	require.NoError(t, err)
	require.True(t, created)

	created, err = app.EnsureSuperadmin(context.Background())
	require.NoError(t, err)
	require.False(t, created)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.FileExists(t, cfg.PepperFile)
}

func TestApplicationSkipsBootstrapWithoutSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.SuperadminEmail = ""

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	created, err := app.EnsureSuperadmin(context.Background())
	require.NoError(t, err)
	require.False(t, created)
}

// requireStopped checks that the database is closed and housekeeping exited.
func requireStopped(t *testing.T, app *Application) {
	t.Helper()

	require.Error(t, app.db.Ping(context.Background()))
	select {
	case <-app.housekeepingService.Done():
	default:
		t.Fatal("housekeeping still running")
	}
}

func TestServeReleasesResourcesOnServerError(t *testing.T) {
	// Hold the port so ListenAndServe fails immediately.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	app, err := New(testConfig(t))
	require.NoError(t, err)
	app.server.Addr = ln.Addr().String()

	err = app.serve(context.Background())
	require.ErrorContains(t, err, "server failed")
	requireStopped(t, app)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	app.server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, app.serve(ctx))
	requireStopped(t, app)
}
