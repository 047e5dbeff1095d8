package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskhub/models"
)

// ErrNotLoggedIn is returned by calls that need a session when there is none.
var ErrNotLoggedIn = errors.New("not logged in")

// Session owns the signed-in user and their token. Any 401 seen by the
// underlying client ends the session and wipes the stored credential.
type Session struct {
	api   *Client
	creds CredentialStore

	mu   sync.RWMutex
	user *models.UserProfile
}

func NewSession(api *Client, creds CredentialStore) *Session {
	s := &Session{api: api, creds: creds}
	api.setUnauthorizedHook(s.expire)
	return s
}

// API is the client the session authenticates.
func (s *Session) API() *Client { return s.api }

// Init restores a stored session. A stored token the server rejects is
// discarded and Init returns without error, leaving the session empty.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.creds.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	s.api.SetToken(token)
	user, err := s.api.Me(ctx)
	if IsUnauthorized(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.UserProfile, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.start(res)
}

func (s *Session) Register(ctx context.Context, name, email, password string) (*models.UserProfile, error) {
	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.start(res)
}

func (s *Session) start(res *AuthResponse) (*models.UserProfile, error) {
	if err := s.creds.Save(res.Token); err != nil {
		return nil, err
	}
	s.api.SetToken(res.Token)

	user := res.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return &user, nil
}

// Logout ends the session locally. The server keeps no session state.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.api.SetToken("")
	return s.creds.Clear()
}

func (s *Session) expire() {
	_ = s.Logout()
}

func (s *Session) User() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}
