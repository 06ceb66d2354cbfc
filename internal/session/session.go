// Package session owns the console's login state: a single opaque token kept
// in a scoped key/value Storage.
//
// The presence of the token is the only signal of "logged in". No claims are
// inspected client-side. State is the one accessor shared by the request
// client (which attaches the token) and the navigation guard (which checks
// for it), so tests can substitute the storage behind both.
package session

import (
	"context"
	"fmt"
	"log/slog"
)

// TokenKey is the fixed storage key of the session token.
const TokenKey = "token"

// Storage is a scoped string key/value store with session lifetime, the
// analogue of a browser tab's session storage.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// State reads and writes the session token.
type State struct {
	storage Storage
	logger  *slog.Logger
}

// New returns a State backed by storage.
func New(storage Storage, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{storage: storage, logger: logger}
}

// Token returns the current token. ok is false when no token is stored.
// Every call reads the storage; nothing is cached.
func (s *State) Token(ctx context.Context) (token string, ok bool, err error) {
	token, ok, err = s.storage.Get(ctx, TokenKey)
	if err != nil {
		return "", false, fmt.Errorf("read session token: %w", err)
	}
	if !ok || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// IsAuthenticated reports whether a token is present. A storage failure is
// logged and reported as not authenticated.
func (s *State) IsAuthenticated(ctx context.Context) bool {
	_, ok, err := s.Token(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "session state unreadable, treating as logged out", "error", err)
		return false
	}
	return ok
}

// SetToken stores the token issued at a successful login.
func (s *State) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}

// Clear removes the token at logout or when the server reports it invalid.
func (s *State) Clear(ctx context.Context) error {
	if err := s.storage.Remove(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
