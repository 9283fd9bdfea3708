package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	"github.com/AD0791/graphql-todos-backend/internal/todos/store"
	"github.com/AD0791/graphql-todos-backend/pkg/httpx"
	"github.com/AD0791/graphql-todos-backend/pkg/otelx"
	"github.com/AD0791/graphql-todos-backend/pkg/slogx"
	graphqlgo "github.com/graph-gophers/graphql-go"

	_ "github.com/AD0791/graphql-todos-backend/api/todos" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits groups the rate limit profiles applied per route family.
type Limits struct {
	GraphQL httpx.RateLimitConfig
	Health  httpx.RateLimitConfig
}

// DefaultLimits is used when a Router is built without explicit limits.
var DefaultLimits = Limits{
	GraphQL: httpx.LenientLimit,
	Health:  httpx.PublicLimit,
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	name         string
	buildVersion string
	env          string
	startTime    time.Time
	logger       *slog.Logger
	limits       Limits

	store        store.Store
	Schema       *graphqlgo.Schema
	TokenService *service.TokenService
}

func NewRouter(
	name, buildVersion, env string,
	st store.Store,
	logger *slog.Logger,
	corsOrigins []string,
	limits Limits,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		name:         name,
		buildVersion: buildVersion,
		env:          env,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		limits:       limits,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger, "/livez", "/readyz", "/health"),
		otelx.HTTPMiddleware(name),
		httpx.CORS(corsOrigins),
		httpx.ClientIPMiddleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerGraphQL()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Todos GraphQL Service API
//	@version		0.1.0
//	@description	Todo lists with role based access control. Business operations live on the GraphQL endpoint;
//	@description	this document covers the plain HTTP surface around it.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerGraphQL() {
	// Anonymous callers get through so signup/login work; a bad token is
	// still rejected with 401.
	r.Mux.Handle("POST /graphql",
		httpx.Chain(GraphQLHandler(r.Schema),
			httpx.OptionalAuthnMiddleware(httpx.BearerResolverFunc(r.resolveBearer)),
			httpx.RateLimitBySubject(r.limits.GraphQL, actorID),
		),
	)
}

func (r *Router) registerSystem() {
	health := httpx.RateLimitByIP(r.limits.Health)

	r.Mux.Handle("GET /{$}", httpx.Chain(InfoHandler(r.name, r.buildVersion, r.env), health))
	r.Mux.Handle("GET /health", httpx.Chain(LivezHandler(r.startTime, r.buildVersion), health))
	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(r.startTime, r.buildVersion), health))
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store), health),
	)
}

// resolveBearer verifies an access token and binds the resulting actor to
// the request context.
func (r *Router) resolveBearer(ctx context.Context, token string) (context.Context, error) {
	actor, err := r.TokenService.Resolve(ctx, token)
	if err != nil {
		return ctx, err
	}
	if actor.Authenticated() {
		ctx = slogx.With(ctx, "actor_id", actor.ID)
	}
	return policy.WithActor(ctx, actor), nil
}

func actorID(ctx context.Context) string {
	return policy.ActorFromContext(ctx).ID
}
