package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	"github.com/AD0791/graphql-todos-backend/pkg/httpx"
	"github.com/AD0791/graphql-todos-backend/pkg/jwtx"
	"github.com/caarlos0/env/v11"
)

// Environments accepted in ENVIRONMENT.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var (
	validEnvs       = []string{EnvDevelopment, EnvStaging, EnvProduction}
	validAlgorithms = []string{"HS256", "HS384", "HS512"}
)

type Config struct {
	DatabaseFile string `env:"TODOS_DATABASE_FILE" envDefault:"todos.db"`
	PepperFile   string `env:"PEPPER_FILE"         envDefault:"pepper"`

	SecretKey          string `env:"SECRET_KEY"`
	Algorithm          string `env:"JWT_ALGORITHM"               envDefault:"HS256"`
	Issuer             string `env:"JWT_ISSUER"                  envDefault:"graphql-todos"`
	AccessTokenMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	RefreshTokenDays   int    `env:"REFRESH_TOKEN_EXPIRE_DAYS"   envDefault:"7"`

	Env         string   `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool     `env:"DEBUG"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Superadmin seed. Bootstrap is skipped when the email is empty.
	SuperadminEmail    string `env:"SUPERADMIN_EMAIL"`
	SuperadminPassword string `env:"SUPERADMIN_PASSWORD"`
	SuperadminFullName string `env:"SUPERADMIN_FULL_NAME" envDefault:"Super Admin"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                 int           `env:"PORT"                  envDefault:"8000"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

// RateLimitConfig overrides the request budgets, per minute and per key. Each
// value resizes one of the httpx profiles.
type RateLimitConfig struct {
	GraphQL     int `env:"GRAPHQL"     envDefault:"300"`
	Health      int `env:"HEALTH"      envDefault:"1000"`
	Credentials int `env:"CREDENTIALS" envDefault:"5"`
	Refresh     int `env:"REFRESH"     envDefault:"20"`
}

func (c RateLimitConfig) graphQL() httpx.RateLimitConfig {
	return httpx.LenientLimit.Scale(c.GraphQL)
}

func (c RateLimitConfig) health() httpx.RateLimitConfig {
	return httpx.PublicLimit.Scale(c.Health)
}

func (c RateLimitConfig) credentials() httpx.RateLimitConfig {
	return httpx.StrictLimit.Scale(c.Credentials)
}

func (c RateLimitConfig) refresh() httpx.RateLimitConfig {
	return httpx.ModerateLimit.Scale(c.Refresh)
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.Algorithm))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error

	if len(c.SecretKey) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("SECRET_KEY must be at least %d characters", jwtx.MinSecretLength))
	}
	if !slices.Contains(validAlgorithms, c.Algorithm) {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM must be one of %s", strings.Join(validAlgorithms, ", ")))
	}
	if c.Issuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER must not be empty"))
	}
	if c.AccessTokenMinutes < 1 || c.AccessTokenMinutes > 1440 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be between 1 and 1440"))
	}
	if c.RefreshTokenDays < 1 || c.RefreshTokenDays > 365 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be between 1 and 365"))
	}

	if !slices.Contains(validEnvs, c.Env) {
		errs = append(errs, fmt.Errorf("ENVIRONMENT must be one of %s", strings.Join(validEnvs, ", ")))
	}
	if c.Env == EnvProduction && c.Debug {
		errs = append(errs, errors.New("DEBUG must be false in production"))
	}
	if c.Env == EnvProduction && slices.Contains(c.CORSOrigins, "*") {
		errs = append(errs, errors.New("CORS_ORIGINS must not contain * in production"))
	}

	if c.SuperadminEmail != "" {
		if err := service.ValidatePassword(c.SuperadminPassword); err != nil {
			errs = append(errs, fmt.Errorf("SUPERADMIN_PASSWORD: %w", err))
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, errors.New("PORT must be between 1 and 65535"))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_GRACE_PERIOD must be positive"))
	}
	if c.HousekeepingInterval <= 0 {
		errs = append(errs, errors.New("HOUSEKEEPING_INTERVAL must be positive"))
	}
	if c.RateLimit.GraphQL < 1 || c.RateLimit.Health < 1 || c.RateLimit.Credentials < 1 ||
		c.RateLimit.Refresh < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_* values must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) AccessTTL() time.Duration  { return time.Duration(c.AccessTokenMinutes) * time.Minute }
func (c Config) RefreshTTL() time.Duration { return time.Duration(c.RefreshTokenDays) * 24 * time.Hour }

// SuperadminSeed returns the configured seed, or false when none is set.
func (c Config) SuperadminSeed() (service.SuperadminSeed, bool) {
	if c.SuperadminEmail == "" {
		return service.SuperadminSeed{}, false
	}
	return service.SuperadminSeed{
		Email:    c.SuperadminEmail,
		Password: c.SuperadminPassword,
		FullName: c.SuperadminFullName,
	}, true
}
