package todosdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// GraphQLPath is where the server mounts the GraphQL endpoint.
const GraphQLPath = "/graphql"

// SDKClient is a client for the todos service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a 10 second request timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

const authPayloadFields = `accessToken refreshToken tokenType expiresIn user { ` + userFields + ` }`

// Signup registers a new user and returns a session for it.
func (c *SDKClient) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	var out struct {
		Signup AuthPayload `json:"signup"`
	}
	err := c.Query(ctx, "", `mutation($input: SignupInput!) { signup(input: $input) { `+authPayloadFields+` } }`,
		map[string]any{"input": in}, &out)
	if err != nil {
		return nil, err
	}
	return newSession(c, out.Signup), nil
}

// Login exchanges credentials for a session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	var out struct {
		Login AuthPayload `json:"login"`
	}
	err := c.Query(ctx, "", `mutation($email: String!, $password: String!) { login(email: $email, password: $password) { `+authPayloadFields+` } }`,
		map[string]any{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return newSession(c, out.Login), nil
}

// Refresh rotates a refresh token. The old token is unusable afterwards.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*AuthPayload, error) {
	var out struct {
		RefreshToken AuthPayload `json:"refreshToken"`
	}
	err := c.Query(ctx, "", `mutation($rt: String!) { refreshToken(refreshToken: $rt) { `+authPayloadFields+` } }`,
		map[string]any{"rt": refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out.RefreshToken, nil
}

// NewSessionFromTokens resumes a session from stored tokens.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	return newSession(c, AuthPayload{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}
