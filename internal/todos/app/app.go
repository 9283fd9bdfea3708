package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/graphql"
	httpapi "github.com/AD0791/graphql-todos-backend/internal/todos/http"
	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store/drivers/sqlite"
	"github.com/AD0791/graphql-todos-backend/pkg/cryptox"
	"github.com/AD0791/graphql-todos-backend/pkg/httpx"
	"github.com/AD0791/graphql-todos-backend/pkg/jwtx"
	"github.com/AD0791/graphql-todos-backend/pkg/otelx"
	"github.com/AD0791/graphql-todos-backend/pkg/slogx"
)

const (
	ServiceName = "graphql-todos"

	// BuildVersion is overridden at build time via -ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the store, services and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db            *sqlite.Store
	signer        *jwtx.HMACSigner
	hasher        *cryptox.Hasher
	shutdownTrace func(context.Context) error

	tokenService        *service.TokenService
	userService         *service.UserService
	todoService         *service.TodoService
	statsService        *service.StatsService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New opens the database, applies migrations and builds every component.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: ServiceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCrypto(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	shutdown, err := otelx.Setup(context.Background(), otelx.Config{
		ServiceName: ServiceName,
		Version:     BuildVersion,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		// Tracing is optional; keep serving without it.
		app.logger.Warn("tracing disabled", "error", err)
	}
	app.shutdownTrace = shutdown

	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run seeds the superadmin, starts the server and blocks until a shutdown
// signal or a server error.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.serve(ctx)
}

// serve blocks until ctx is done or the server fails. Every exit path closes
// the database, and once started the housekeeping worker is stopped too.
func (app *Application) serve(ctx context.Context) (err error) {
	if _, err := app.EnsureSuperadmin(context.Background()); err != nil {
		_ = app.Close()
		return err
	}

	app.housekeepingService.Start()
	defer func() {
		if serr := app.Shutdown(); serr != nil && err == nil {
			err = fmt.Errorf("graceful shutdown failed: %w", serr)
		}
	}()

	app.logger.Info("todos service starting", "port", app.cfg.Port, "version", BuildVersion, "env", app.cfg.Env)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutdown signal received")
	}

	return nil
}

// Shutdown drains in-flight requests and releases resources.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down todos service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.shutdownTrace(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	return app.Close()
}

// Close releases the database without touching the HTTP server. Commands
// that never call Run use it directly.
func (app *Application) Close() error {
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	app.logger.Info("todos service stopped")
	return nil
}

// EnsureSuperadmin creates the configured superadmin when missing. It
// reports whether a new identity was created.
func (app *Application) EnsureSuperadmin(ctx context.Context) (bool, error) {
	seed, ok := app.cfg.SuperadminSeed()
	if !ok {
		app.logger.Info("no superadmin configured, skipping bootstrap")
		return false, nil
	}

	u, created, err := app.bootstrapService.EnsureSuperadmin(ctx, seed)
	if err != nil {
		return false, fmt.Errorf("failed to ensure superadmin: %w", err)
	}
	if created {
		app.logger.Info("superadmin created", "user_id", u.ID, "email", u.Email)
	} else {
		app.logger.Info("superadmin already present", "user_id", u.ID)
	}
	return created, nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	signer, err := jwtx.NewHMAC(app.cfg.Algorithm, []byte(app.cfg.SecretKey), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Store:      app.db,
		Hasher:     app.hasher,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL(),
		RefreshTTL: app.cfg.RefreshTTL(),
		Limiter:    httpx.NewLimiter(app.cfg.RateLimit.credentials()),

		// Refresh rotation gets its own, looser budget.
		RefreshLimiter: httpx.NewLimiter(app.cfg.RateLimit.refresh()),
	}
	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}
	app.todoService = &service.TodoService{Store: app.db}
	app.statsService = &service.StatsService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Hasher: app.hasher}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() error {
	schema, err := graphql.NewSchema(&graphql.Resolver{
		TokenService: app.tokenService,
		UserService:  app.userService,
		TodoService:  app.todoService,
		StatsService: app.statsService,
	})
	if err != nil {
		return fmt.Errorf("failed to build graphql schema: %w", err)
	}

	router := httpapi.NewRouter(
		ServiceName,
		BuildVersion,
		app.cfg.Env,
		app.db,
		app.logger,
		app.cfg.CORSOrigins,
		httpapi.Limits{
			GraphQL: app.cfg.RateLimit.graphQL(),
			Health:  app.cfg.RateLimit.health(),
		},
	)
	router.Schema = schema
	router.TokenService = app.tokenService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

// Handler exposes the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Migrate applies pending migrations to the configured database file.
func Migrate(cfg Config) error {
	db, err := sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return nil
}
