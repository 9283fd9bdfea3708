package todosdk

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// refreshBuffer refreshes access tokens slightly before they expire.
const refreshBuffer = 30 * time.Second

// Session is an authenticated session with automatic token refresh.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	user         User
}

func newSession(client *SDKClient, p AuthPayload) *Session {
	s := &Session{client: client, user: p.User}
	s.store(p)
	return s
}

func (s *Session) store(p AuthPayload) {
	s.accessToken = p.AccessToken
	s.refreshToken = p.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(p.ExpiresIn)*time.Second - refreshBuffer)
}

// User is the identity returned when the session was created.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// getValidToken returns a valid access token, refreshing it if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	p, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.store(*p)
	s.user = p.User

	return s.accessToken, nil
}

// Query runs a GraphQL document as the session's user.
func (s *Session) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return err
	}
	return s.client.Query(ctx, token, query, vars, out)
}

// Logout revokes the session's refresh token. The access token stays valid
// until it expires.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}

	var out struct {
		Logout bool `json:"logout"`
	}
	if err := s.client.Query(ctx, "", `mutation($rt: String!) { logout(refreshToken: $rt) }`,
		map[string]any{"rt": s.refreshToken}, &out); err != nil {
		return err
	}
	s.refreshToken = ""
	return nil
}
