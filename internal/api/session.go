package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionStore persists the bearer token between runs.
type SessionStore interface {
	LoadSession(ctx context.Context) (token, email string, err error)
	SaveSession(ctx context.Context, token, email string) error
	ClearSession(ctx context.Context) error
}

// ErrNoSession is returned by stores that have nothing saved.
var ErrNoSession = errors.New("no stored session")

// Session holds the authentication token for the current user. It is set at
// login, read by every request and cleared at logout.
type Session struct {
	mu    sync.RWMutex
	token string
	email string
	store SessionStore
	now   func() time.Time
}

// NewSession creates an empty session. A nil store keeps the token in memory.
func NewSession(store SessionStore) *Session {
	return &Session{store: store, now: time.Now}
}

// Restore loads a persisted token, if any.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	token, email, err := s.store.LoadSession(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token, s.email = token, email
	s.mu.Unlock()
	return nil
}

// Set stores the token in memory and in the backing store.
func (s *Session) Set(ctx context.Context, token, email string) error {
	s.mu.Lock()
	s.token, s.email = token, email
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.SaveSession(ctx, token, email)
}

// Clear forgets the token. The in-memory copy is dropped even when the store
// fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.email = "", ""
	s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.ClearSession(ctx)
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// Valid reports whether a token is present and, when it is a JWT carrying an
// exp claim, not yet expired. Opaque tokens are valid while present.
func (s *Session) Valid() bool {
	token := s.Token()
	if token == "" {
		return false
	}
	exp, ok := tokenExpiry(token)
	if !ok {
		return true
	}
	return s.now().Before(exp)
}

// ExpiresAt returns the exp claim of a JWT token.
func (s *Session) ExpiresAt() (time.Time, bool) {
	return tokenExpiry(s.Token())
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend is the only party holding the key.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
