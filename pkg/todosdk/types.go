package todosdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez, /health and /readyz.
type HealthResponse struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`

	// Uptime is the process uptime (e.g. "1h23m45s").
	Uptime string `json:"uptime,omitempty"`

	Version string `json:"version,omitempty"`

	// Checks is only set by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
}

// InfoResponse is returned by GET /.
type InfoResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	GraphQL     string `json:"graphql"`
	Docs        string `json:"docs"`
}

// ErrorResponse is the envelope written by the non-GraphQL endpoints.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ============================================================================
// GraphQL Envelope
// ============================================================================

// Request is a GraphQL request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []*GraphQLError `json:"errors"`
}

// ============================================================================
// Domain Types
// ============================================================================

// User mirrors the GraphQL User type.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FullName        string     `json:"fullName"`
	Role            string     `json:"role"`
	RoleDisplayName string     `json:"roleDisplayName"`
	IsActive        bool       `json:"isActive"`
	CreatedByID     *string    `json:"createdById"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	DeletedAt       *time.Time `json:"deletedAt"`
	DeletedByID     *string    `json:"deletedById"`
	IsDeleted       bool       `json:"isDeleted"`
}

// Todo mirrors the GraphQL Todo type.
type Todo struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"dueDate"`
	OwnerID      string     `json:"ownerId"`
	IsCompleted  bool       `json:"isCompleted"`
	CompletedAt  *time.Time `json:"completedAt"`
	IsOverdue    bool       `json:"isOverdue"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
	DeletedByID  *string    `json:"deletedById"`
	DeleteReason *string    `json:"deleteReason"`
	IsDeleted    bool       `json:"isDeleted"`
}

// RoleChange mirrors the GraphQL RoleChange type.
type RoleChange struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	OldRole     string    `json:"oldRole"`
	NewRole     string    `json:"newRole"`
	ChangedByID string    `json:"changedById"`
	ChangedAt   time.Time `json:"changedAt"`
	Reason      *string   `json:"reason"`
	IsPromotion bool      `json:"isPromotion"`
	IsDemotion  bool      `json:"isDemotion"`
	Description string    `json:"description"`
}

// AuthPayload is returned by signup, login and refreshToken.
type AuthPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
	User         User   `json:"user"`
}

// SignupInput registers a new USER.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// CreateTodoInput creates a todo owned by the caller.
type CreateTodoInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// TodoFilter narrows ListTodos.
type TodoFilter struct {
	OwnerID        *string `json:"ownerId,omitempty"`
	Status         *string `json:"status,omitempty"`
	Priority       *string `json:"priority,omitempty"`
	IsCompleted    *bool   `json:"isCompleted,omitempty"`
	Overdue        *bool   `json:"overdue,omitempty"`
	IncludeDeleted *bool   `json:"includeDeleted,omitempty"`
	Limit          *int    `json:"limit,omitempty"`
	Offset         *int    `json:"offset,omitempty"`
}
