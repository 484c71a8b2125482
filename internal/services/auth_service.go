package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"storefront/internal/backend"
	"storefront/internal/domain"
	"storefront/internal/repos"
)

var (
	ErrBadCreds       = errors.New("invalid email or password")
	ErrSessionExpired = errors.New("session expired")
)

// AuthService is the storefront's authentication provider. Credentials are
// checked by the backend; the resulting identity is kept per browser session
// and every change is announced to the session's subscribers.
type AuthService struct {
	Sessions *repos.SessionRepo
	Backend  *backend.Client
	Secret   string

	mu        sync.Mutex
	listeners map[string]map[int]func(userID string)
	nextID    int
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	res, err := s.Backend.Login(ctx, email, password)
	if errors.Is(err, backend.ErrUnauthorized) {
		return nil, ErrBadCreds
	}
	if err != nil {
		return nil, err
	}
	claims, err := backend.VerifyToken(s.Secret, res.AccessToken)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
		Token: res.AccessToken,
	}
	if err := s.Sessions.Bind(sid, u); err != nil {
		return nil, err
	}
	s.notify(sid, u.ID)
	return &u, nil
}

func (s *AuthService) Logout(sid string) error {
	if err := s.Sessions.Unbind(sid); err != nil {
		return err
	}
	s.notify(sid, "")
	return nil
}

// CurrentUser returns the identity of sid, or nil for anonymous sessions.
// A session whose token no longer verifies is signed out.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	if sid == "" {
		return nil, nil
	}
	u, err := s.Sessions.User(sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := backend.VerifyToken(s.Secret, u.Token); err != nil {
		_ = s.Logout(sid)
		return nil, ErrSessionExpired
	}
	return u, nil
}

// Identity exposes one browser session to the identity bridge.
func (s *AuthService) Identity(sid string) *SessionIdentity {
	return &SessionIdentity{auth: s, sid: sid}
}

func (s *AuthService) subscribe(sid string, fn func(string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[string]map[int]func(string))
	}
	if s.listeners[sid] == nil {
		s.listeners[sid] = make(map[int]func(string))
	}
	id := s.nextID
	s.nextID++
	s.listeners[sid][id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners[sid], id)
		if len(s.listeners[sid]) == 0 {
			delete(s.listeners, sid)
		}
	}
}

func (s *AuthService) notify(sid, userID string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.listeners[sid]))
	for _, fn := range s.listeners[sid] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(userID)
	}
}

// SessionIdentity implements identity.Resolver and identity.Notifier.
type SessionIdentity struct {
	auth *AuthService
	sid  string
}

func (i *SessionIdentity) CurrentUserID() string {
	u, err := i.auth.CurrentUser(i.sid)
	if err != nil || u == nil {
		return ""
	}
	return u.ID
}

func (i *SessionIdentity) OnIdentityChange(fn func(userID string)) func() {
	return i.auth.subscribe(i.sid, fn)
}
