package client

import (
	"context"
	"errors"
	"sync"

	"creditoya-web/internal/core/domain"
	"creditoya-web/internal/pkg/logger"
)

// AuthState is the customer's session as the pages see it
type AuthState struct {
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	User            *domain.ClientUser
}

// HomePath is where a closed session lands
const HomePath = "/"

// AuthStore holds the session state shared by every page
type AuthStore struct {
	api      *Client
	navigate func(path string)

	mu    sync.RWMutex
	state AuthState
}

// NewAuthStore returns a store that is loading until the first Probe.
// navigate is called with HomePath after logout; nil means no navigation.
func NewAuthStore(api *Client, navigate func(path string)) *AuthStore {
	if navigate == nil {
		navigate = func(string) {}
	}
	return &AuthStore{
		api:      api,
		navigate: navigate,
		state:    AuthState{IsLoading: true},
	}
}

// State returns a snapshot of the session
func (s *AuthStore) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Probe asks the server who is logged in. Any failure leaves the store
// unauthenticated without an error.
func (s *AuthStore) Probe(ctx context.Context) {
	user, err := s.api.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
	if err != nil {
		logger.Log.WithError(err).Debug("no active session")
		s.state.IsAuthenticated = false
		return
	}
	s.state = AuthState{IsAuthenticated: true, User: user}
}

// Login opens a session. On failure Error holds the server's message.
func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	s.begin()
	user, err := s.api.Login(ctx, email, password)
	return s.finish(user, err, "Credenciales inválidas")
}

// Register creates the account and opens a session
func (s *AuthStore) Register(ctx context.Context, in RegisterInput) error {
	s.begin()
	user, err := s.api.Register(ctx, in)
	return s.finish(user, err, "Error en el registro")
}

// Logout closes the session and goes home. The local state is reset even
// when the server call fails.
func (s *AuthStore) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		logger.Log.WithError(err).Warn("logout request failed")
	}

	s.mu.Lock()
	s.state = AuthState{}
	s.mu.Unlock()

	s.navigate(HomePath)
}

// IsActivated reports whether a user is present and not banned
func (s *AuthStore) IsActivated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User != nil && !s.state.User.IsBan
}

func (s *AuthStore) begin() {
	s.mu.Lock()
	s.state.IsLoading = true
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *AuthStore) finish(user *domain.ClientUser, err error, noUser string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if errors.Is(err, ErrNoUser) {
		err = &APIError{Message: noUser}
	}
	if err != nil {
		s.state.IsLoading = false
		s.state.IsAuthenticated = false
		s.state.Error = ErrorMessage(err)
		return err
	}

	s.state = AuthState{IsAuthenticated: true, User: user}
	return nil
}
