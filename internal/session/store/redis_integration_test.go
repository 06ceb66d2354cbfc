//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Liutianci99/grad-pilipala/internal/session/store"
	"github.com/Liutianci99/grad-pilipala/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	st := store.NewRedis(s.redis.Client, uuid.NewString())

	_, ok, err := st.Get(ctx, "token")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(st.Set(ctx, "token", "abc"))
	v, ok, err := st.Get(ctx, "token")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("abc", v)

	s.Require().NoError(st.Remove(ctx, "token"))
	_, ok, err = st.Get(ctx, "token")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisStoreSuite) TestScopesShareAndIsolate() {
	ctx := context.Background()
	scope := uuid.NewString()
	first := store.NewRedis(s.redis.Client, scope)
	second := store.NewRedis(s.redis.Client, scope)
	other := store.NewRedis(s.redis.Client, uuid.NewString())

	s.Require().NoError(first.Set(ctx, "token", "shared"))

	v, ok, err := second.Get(ctx, "token")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("shared", v)

	_, ok, err = other.Get(ctx, "token")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *RedisStoreSuite) TestClearScope() {
	ctx := context.Background()
	st := store.NewRedis(s.redis.Client, uuid.NewString())
	s.Require().NoError(st.Set(ctx, "token", "abc"))
	s.Require().NoError(st.Set(ctx, "user", "merchant"))

	s.Require().NoError(st.ClearScope(ctx))

	_, ok, _ := st.Get(ctx, "token")
	s.False(ok)
	_, ok, _ = st.Get(ctx, "user")
	s.False(ok)
}

func (s *RedisStoreSuite) TestTTL() {
	ctx := context.Background()
	st := store.NewRedis(s.redis.Client, uuid.NewString(), store.WithTTL(time.Minute))
	s.Require().NoError(st.Set(ctx, "token", "abc"))

	ttl, err := s.redis.Client.TTL(ctx, "pilipala:session:"+"missing").Result()
	s.Require().NoError(err)
	s.Less(ttl, time.Duration(0))

	keys, err := s.redis.Client.Keys(ctx, "pilipala:session:*:token").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)
	ttl, err = s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}
