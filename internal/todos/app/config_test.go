package app

import (
	"strings"
	"testing"
	"time"

	"github.com/AD0791/graphql-todos-backend/pkg/httpx"
	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"SECRET_KEY": strings.Repeat("x", 32),
	}
}

func parse(t *testing.T, vars map[string]string) (Config, error) {
	t.Helper()
	return parseConfig(env.Options{Environment: vars})
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := parse(t, baseEnv())
	require.NoError(t, err)

	require.Equal(t, "todos.db", cfg.DatabaseFile)
	require.Equal(t, "HS256", cfg.Algorithm)
	require.Equal(t, "graphql-todos", cfg.Issuer)
	require.Equal(t, 30*time.Minute, cfg.AccessTTL())
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL())
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	require.Equal(t, 8000, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.Equal(t, 300, cfg.RateLimit.GraphQL)
	require.Equal(t, 5, cfg.RateLimit.Credentials)
	require.Equal(t, 20, cfg.RateLimit.Refresh)
	require.Equal(t, httpx.StrictLimit, cfg.RateLimit.credentials())
	require.Equal(t, httpx.ModerateLimit, cfg.RateLimit.refresh())
	require.Equal(t, httpx.LenientLimit, cfg.RateLimit.graphQL())

	_, ok := cfg.SuperadminSeed()
	require.False(t, ok)
}

func TestConfigOverrides(t *testing.T) {
	vars := baseEnv()
	vars["JWT_ALGORITHM"] = "hs512"
	vars["ENVIRONMENT"] = "Production"
	vars["CORS_ORIGINS"] = "https://a.example.com,https://b.example.com"
	vars["ACCESS_TOKEN_EXPIRE_MINUTES"] = "15"
	vars["RATE_LIMIT_GRAPHQL"] = "50"
	vars["SUPERADMIN_EMAIL"] = "root@example.com"
	vars["SUPERADMIN_PASSWORD"] = "Sup3rSecret"

	cfg, err := parse(t, vars)
	require.NoError(t, err)
	require.Equal(t, "HS512", cfg.Algorithm)
	require.Equal(t, EnvProduction, cfg.Env)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL())
	require.Equal(t, 50, cfg.RateLimit.GraphQL)
	require.Equal(t, 50, cfg.RateLimit.graphQL().RequestsPerWindow)

	seed, ok := cfg.SuperadminSeed()
	require.True(t, ok)
	require.Equal(t, "root@example.com", seed.Email)
	require.Equal(t, "Super Admin", seed.FullName)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"SECRET_KEY": ""}, "SECRET_KEY"},
		{"short secret", map[string]string{"SECRET_KEY": "short"}, "SECRET_KEY"},
		{"bad algorithm", map[string]string{"JWT_ALGORITHM": "RS256"}, "JWT_ALGORITHM"},
		{"access ttl too long", map[string]string{"ACCESS_TOKEN_EXPIRE_MINUTES": "1441"}, "ACCESS_TOKEN_EXPIRE_MINUTES"},
		{"refresh ttl zero", map[string]string{"REFRESH_TOKEN_EXPIRE_DAYS": "0"}, "REFRESH_TOKEN_EXPIRE_DAYS"},
		{"unknown environment", map[string]string{"ENVIRONMENT": "qa"}, "ENVIRONMENT"},
		{"debug in production", map[string]string{"ENVIRONMENT": "production", "DEBUG": "true"}, "DEBUG"},
		{"wildcard cors in production", map[string]string{"ENVIRONMENT": "production", "CORS_ORIGINS": "*"}, "CORS_ORIGINS"},
		{"weak superadmin password", map[string]string{"SUPERADMIN_EMAIL": "root@example.com", "SUPERADMIN_PASSWORD": "password"}, "SUPERADMIN_PASSWORD"},
		{"bad port", map[string]string{"PORT": "0"}, "PORT"},
		{"zero rate limit", map[string]string{"RATE_LIMIT_CREDENTIALS": "0"}, "RATE_LIMIT_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := baseEnv()
			for k, v := range tt.set {
				vars[k] = v
			}

			_, err := parse(t, vars)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigValidateJoinsErrors(t *testing.T) {
	_, err := parse(t, map[string]string{"PORT": "0", "JWT_ALGORITHM": "none"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "SECRET_KEY")
	require.Contains(t, err.Error(), "JWT_ALGORITHM")
	require.Contains(t, err.Error(), "PORT")
}

func TestConfigParseError(t *testing.T) {
	vars := baseEnv()
	vars["PORT"] = "eighty"

	_, err := parse(t, vars)
	require.ErrorContains(t, err, "parse env")
}
