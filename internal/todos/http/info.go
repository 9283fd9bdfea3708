package http

import (
	"net/http"

	"github.com/AD0791/graphql-todos-backend/pkg/httpx"
	"github.com/AD0791/graphql-todos-backend/pkg/todosdk"
)

// InfoHandler godoc
//
//	@Summary		Service information
//	@Description	Name, version and the paths of the GraphQL endpoint and API docs.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	todosdk.InfoResponse
//	@Router			/ [get].
func InfoHandler(name, version, env string) http.HandlerFunc {
	info := todosdk.InfoResponse{
		Name:        name,
		Version:     version,
		Environment: env,
		GraphQL:     todosdk.GraphQLPath,
		Docs:        "/swagger/index.html",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, info)
	}
}
