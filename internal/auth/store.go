// Package auth tracks who is signed in. It is the only writer of the token
// holder besides the login command.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vitashop/vitashop/internal/tokens"
)

// User is the signed-in account as the backend described it at login.
type User struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// State is a snapshot of the session.
type State struct {
	IsAuthenticated bool
	User            *User
}

// TokenHolder is the persisted credential store.
type TokenHolder interface {
	Get(key tokens.Key) (string, bool)
	SaveLogin(ctx context.Context, login tokens.Login) error
	Clear(ctx context.Context) error
}

// Store holds the in-memory session state. It is safe for concurrent use.
type Store struct {
	tokens TokenHolder
	logger *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewStore creates a signed-out store backed by holder.
func NewStore(holder TokenHolder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{tokens: holder, logger: logger}
}

// Restore rebuilds the session from persisted credentials. A stored access
// token means signed in; unreadable user data is logged and ignored.
func (s *Store) Restore() State {
	token, ok := s.tokens.Get(tokens.KeyAccessToken)
	if !ok || token == "" {
		s.set(State{})
		return State{}
	}

	state := State{IsAuthenticated: true}
	if raw, ok := s.tokens.Get(tokens.KeyUserData); ok && raw != "" {
		var user User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.logger.Warn("ignoring unreadable user data", "error", err)
		} else {
			state.User = &user
		}
	}

	s.set(state)
	return state
}

// Login persists credentials and marks the session signed in.
func (s *Store) Login(ctx context.Context, accessToken, refreshToken string, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	err = s.tokens.SaveLogin(ctx, tokens.Login{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserData:     string(data),
	})
	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	s.set(State{IsAuthenticated: true, User: &user})
	s.logger.Info("signed in", "email", user.Email)
	return nil
}

// SetUser replaces the in-memory user record.
func (s *Store) SetUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = &user
}

// Logout signs the session out and clears persisted credentials. The
// in-memory state is cleared first and stays cleared when the token holder
// fails.
func (s *Store) Logout(ctx context.Context) error {
	s.set(State{})

	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Error("clearing credentials on logout", "error", err)
		return fmt.Errorf("clearing credentials: %w", err)
	}

	s.logger.Info("signed out")
	return nil
}

// State returns a copy of the current session state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	if state.User != nil {
		u := *state.User
		state.User = &u
	}
	return state
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

func (s *Store) set(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
