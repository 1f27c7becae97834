//go:build integration

package partnerinfo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"isdialogmelding/internal/registry/partnerinfo"
	id "isdialogmelding/pkg/domain"
	"isdialogmelding/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *partnerinfo.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = partnerinfo.NewRedisCache(s.redis.Client.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestClientHealthy() {
	s.NoError(s.redis.Health(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()

	_, ok, err := s.cache.Get(ctx, "77")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.Set(ctx, "77", 321))

	partnerID, ok, err := s.cache.Get(ctx, "77")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(id.PartnerID(321), partnerID)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, "88", 1))

	ttl, err := s.redis.Client.TTL(ctx, "partnerinfo:herid:88").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}
