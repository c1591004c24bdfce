package adminapi

import (
	"sync"
	"time"
)

// Session holds the admin token for one client instance. It is acquired
// on login and cleared on logout or expiry; nothing is stored globally.
type Session struct {
	mu        sync.Mutex
	token     string
	username  string
	expiresAt time.Time
}

// Set stores a freshly issued token.
func (s *Session) Set(token, username string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.username = username
	s.expiresAt = expiresAt
}

// Clear drops the token.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.username = ""
	s.expiresAt = time.Time{}
}

// Token returns the current token. ok is false when no token is held or
// the token has expired.
func (s *Session) Token() (token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", false
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

// Username returns the logged-in username, empty when logged out.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// ExpiresAt returns the token expiry, zero when logged out.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}
