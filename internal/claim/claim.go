// Package claim prevents concurrent runs from enriching the same domain twice.
package claim

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultTTL bounds how long a claim survives a crashed run.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "outreach:claim:"

// Claimer hands out short-lived exclusive claims on a domain.
type Claimer interface {
	// Claim returns true when the caller may process domain.
	Claim(ctx context.Context, domain string) bool
	Release(ctx context.Context, domain string)
}

// Noop grants every claim. Used when no Redis is configured.
type Noop struct{}

func (Noop) Claim(context.Context, string) bool { return true }
func (Noop) Release(context.Context, string)    {}

// redisClient is the subset of redis.Cmdable used by RedisClaimer.
type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisClaimer implements Claimer with SET NX and a TTL.
type RedisClaimer struct {
	rdb    redisClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClaimer creates a RedisClaimer. A non-positive ttl uses DefaultTTL.
func NewRedisClaimer(rdb redisClient, ttl time.Duration, logger *zap.Logger) *RedisClaimer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisClaimer{rdb: rdb, ttl: ttl, logger: logger}
}

// NewFromURL connects to Redis at url and verifies the connection.
func NewFromURL(ctx context.Context, url string, ttl time.Duration, logger *zap.Logger) (*RedisClaimer, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return NewRedisClaimer(rdb, ttl, logger), nil
}

// Claim returns true the first time domain is claimed within the TTL.
// When Redis is unavailable the claim is granted; the store upsert stays
// the source of truth.
func (c *RedisClaimer) Claim(ctx context.Context, domain string) bool {
	ok, err := c.rdb.SetNX(ctx, keyPrefix+domain, 1, c.ttl).Result()
	if err != nil {
		c.logger.Warn("claim: redis unavailable, proceeding", zap.String("domain", domain), zap.Error(err))
		return true
	}
	return ok
}

// Release drops the claim on domain.
func (c *RedisClaimer) Release(ctx context.Context, domain string) {
	if err := c.rdb.Del(ctx, keyPrefix+domain).Err(); err != nil {
		c.logger.Debug("claim: release failed", zap.String("domain", domain), zap.Error(err))
	}
}
