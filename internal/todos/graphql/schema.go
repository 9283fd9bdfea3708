// Package graphql exposes the service layer as a GraphQL schema.
package graphql

import (
	_ "embed"

	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	graphqlgo "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var Schema string

// MaxDepth bounds query nesting.
const MaxDepth = 12

// Resolver is the root resolver. Query and Mutation fields are both methods
// on it.
type Resolver struct {
	TokenService *service.TokenService
	UserService  *service.UserService
	TodoService  *service.TodoService
	StatsService *service.StatsService
}

// NewSchema parses the embedded schema against r.
func NewSchema(r *Resolver) (*graphqlgo.Schema, error) {
	return graphqlgo.ParseSchema(Schema, r, graphqlgo.MaxDepth(MaxDepth))
}
