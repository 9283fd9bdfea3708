package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/AD0791/graphql-todos-backend/pkg/slogx"
)

// BearerResolver turns a raw bearer token into an enriched request context.
type BearerResolver interface {
	ResolveBearer(ctx context.Context, token string) (context.Context, error)
}

// BearerResolverFunc adapts a function to BearerResolver.
type BearerResolverFunc func(ctx context.Context, token string) (context.Context, error)

func (f BearerResolverFunc) ResolveBearer(ctx context.Context, token string) (context.Context, error) {
	return f(ctx, token)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(authz[7:])
	return raw, raw != ""
}

// OptionalAuthnMiddleware lets anonymous requests through untouched but still
// rejects a bearer token that is present and invalid.
func OptionalAuthnMiddleware(res BearerResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := BearerToken(r)
			if !ok {
				if r.Header.Get("Authorization") != "" {
					writeBearerError(w, "missing bearer token")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx, err := res.ResolveBearer(ctx, raw)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("bearer token rejected", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
