package http

import (
	"net/http"

	graphqlgo "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

// GraphQLHandler godoc
//
//	@Summary		GraphQL endpoint
//	@Description	Executes a GraphQL query or mutation. Errors are reported in the response body with
//	@Description	extensions.code set to UNAUTHENTICATED, FORBIDDEN, NOT_FOUND, BAD_USER_INPUT, CONFLICT,
//	@Description	RATE_LIMITED or INTERNAL; the HTTP status stays 200.
//	@Tags			GraphQL
//	@Accept			json
//	@Produce		json
//	@Param			request	body		todosdk.Request	true	"GraphQL request"
//	@Success		200		{object}	map[string]any	"data and errors"
//	@Failure		401		{object}	todosdk.ErrorResponse	"invalid bearer token"
//	@Failure		429		{object}	todosdk.ErrorResponse	"rate limited"
//	@Security		BearerAuth
//	@Router			/graphql [post].
func GraphQLHandler(schema *graphqlgo.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}
