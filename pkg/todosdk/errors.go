package todosdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes carried in a GraphQL error's extensions.code.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL"
)

// GraphQLError is one entry of a GraphQL response's errors list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	// Code is copied from Extensions["code"] when decoding.
	Code string `json:"-"`
}

func (e *GraphQLError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPError is returned when an endpoint answers with an unexpected status.
type HTTPError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s: %s", e.StatusCode, e.Code, e.Description)
}

// parseErrorResponse turns a non-2xx response body into an *HTTPError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &HTTPError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &HTTPError{
		StatusCode:  resp.StatusCode,
		Code:        "server_error",
		Description: http.StatusText(resp.StatusCode),
	}
}
