package partnerinfo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	id "isdialogmelding/pkg/domain"
)

const partnerKeyPrefix = "partnerinfo:herid:"

// Cache remembers herId to partnerId lookups.
type Cache interface {
	Get(ctx context.Context, herID id.HerID) (id.PartnerID, bool, error)
	Set(ctx context.Context, herID id.HerID, partnerID id.PartnerID) error
}

// RedisCache shares lookups between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, herID id.HerID) (id.PartnerID, bool, error) {
	val, err := c.client.Get(ctx, partnerKeyPrefix+herID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	partnerID, err := strconv.Atoi(val)
	if err != nil || partnerID <= 0 {
		// treat garbage as a miss; the next Set overwrites it
		return 0, false, nil
	}
	return id.PartnerID(partnerID), true, nil
}

func (c *RedisCache) Set(ctx context.Context, herID id.HerID, partnerID id.PartnerID) error {
	return c.client.Set(ctx, partnerKeyPrefix+herID.String(), partnerID.String(), c.ttl).Err()
}

type cachedPartner struct {
	partnerID id.PartnerID
	storedAt  time.Time
}

// InMemoryCache is a per-process TTL cache used when Redis is not configured.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[id.HerID]cachedPartner
	ttl     time.Duration
	now     func() time.Time
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[id.HerID]cachedPartner),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, herID id.HerID) (id.PartnerID, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.entries[herID]; ok {
		if c.now().Sub(cached.storedAt) < c.ttl {
			return cached.partnerID, true, nil
		}
	}
	return 0, false, nil
}

func (c *InMemoryCache) Set(_ context.Context, herID id.HerID, partnerID id.PartnerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[herID] = cachedPartner{partnerID: partnerID, storedAt: c.now()}
	return nil
}
