package persistence

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/petrijr/intakeflow/internal/testutil"
	"github.com/petrijr/intakeflow/pkg/api"
)

type RedisStoreSuite struct {
	suite.Suite
	client *redis.Client
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	addr := testutil.RedisAddr(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: addr})
	s.Require().NoError(s.client.Ping(context.Background()).Err())
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.client.FlushDB(context.Background()).Err())
}

func (s *RedisStoreSuite) TestContract() {
	runStorageContract(s.T(), NewRedisStore(s.client, "test:"))
}

func (s *RedisStoreSuite) TestKeysArePrefixed() {
	ctx := context.Background()
	store := NewRedisStore(s.client, "test:")
	s.Require().NoError(store.Set(ctx, "active_category", []byte("x")))

	n, err := s.client.Exists(ctx, "test:active_category").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *RedisStoreSuite) TestEmptyPrefixKeepsAdapterKeys() {
	ctx := context.Background()
	a := NewAdapter(NewRedisStore(s.client, ""), "intake:")
	s.Require().NoError(a.SaveCursor(ctx, "weight-loss", 2))

	n, err := s.client.Exists(ctx, "intake:weight-loss:cursor").Result()
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *RedisStoreSuite) TestAdapterCategorySwitch() {
	ctx := context.Background()
	a := NewAdapter(NewRedisStore(s.client, "test:"), "")

	_, err := a.Load(ctx, "weight-loss")
	s.Require().NoError(err)
	s.Require().NoError(a.SaveAnswers(ctx, "weight-loss", sampleAnswers()))

	loaded, err := a.Load(ctx, "longevity")
	s.Require().NoError(err)
	s.Empty(loaded.Answers)
	s.Equal(api.Category("weight-loss"), loaded.Discarded)
}
