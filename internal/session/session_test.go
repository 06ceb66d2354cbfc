package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Liutianci99/grad-pilipala/internal/session"
	"github.com/Liutianci99/grad-pilipala/internal/session/store"
	"github.com/Liutianci99/grad-pilipala/pkg/platform/sentinel"
)

type brokenStorage struct{}

func (brokenStorage) Get(context.Context, string) (string, bool, error) {
	return "", false, sentinel.ErrUnavailable
}
func (brokenStorage) Set(context.Context, string, string) error { return sentinel.ErrUnavailable }
func (brokenStorage) Remove(context.Context, string) error      { return sentinel.ErrUnavailable }

type StateSuite struct {
	suite.Suite
	ctx     context.Context
	storage *store.Memory
	state   *session.State
}

func TestStateSuite(t *testing.T) {
	suite.Run(t, new(StateSuite))
}

func (s *StateSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = store.NewMemory()
	s.state = session.New(s.storage, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *StateSuite) TestLifecycle() {
	s.Run("starts logged out", func() {
		_, ok, err := s.state.Token(s.ctx)
		s.Require().NoError(err)
		s.False(ok)
		s.False(s.state.IsAuthenticated(s.ctx))
	})

	s.Run("login writes the token under the fixed key", func() {
		s.Require().NoError(s.state.SetToken(s.ctx, "opaque-token"))

		raw, ok, err := s.storage.Get(s.ctx, session.TokenKey)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("opaque-token", raw)
		s.True(s.state.IsAuthenticated(s.ctx))
	})

	s.Run("logout clears it", func() {
		s.Require().NoError(s.state.Clear(s.ctx))
		s.False(s.state.IsAuthenticated(s.ctx))
	})
}

func (s *StateSuite) TestReadsAreNeverCached() {
	s.Require().NoError(s.state.SetToken(s.ctx, "t1"))
	s.True(s.state.IsAuthenticated(s.ctx))

	// Another view removes the token behind the accessor's back.
	s.Require().NoError(s.storage.Remove(s.ctx, session.TokenKey))
	s.False(s.state.IsAuthenticated(s.ctx))
}

func (s *StateSuite) TestEmptyTokenIsAbsent() {
	s.Require().NoError(s.storage.Set(s.ctx, session.TokenKey, ""))
	_, ok, err := s.state.Token(s.ctx)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.state.SetToken(s.ctx, "t1"))
	s.Require().NoError(s.state.SetToken(s.ctx, ""))
	_, ok, _ = s.storage.Get(s.ctx, session.TokenKey)
	s.False(ok, "setting an empty token clears the key")
}

func (s *StateSuite) TestStorageFailures() {
	state := session.New(brokenStorage{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, _, err := state.Token(s.ctx)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrUnavailable))

	s.False(state.IsAuthenticated(s.ctx), "unreadable state fails closed")
	s.ErrorIs(state.SetToken(s.ctx, "t"), sentinel.ErrUnavailable)
	s.ErrorIs(state.Clear(s.ctx), sentinel.ErrUnavailable)
}
