package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-room-service/internal/domain"
)

const statsKeyPrefix = "stats:group:"

// RedisStatsCache stores group stats snapshots in Redis. Entries are advisory;
// the allocator invalidates a group's entry after every committed mutation so
// stale snapshots never outlive the TTL plus one write.
type RedisStatsCache struct {
	redis  *Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStatsCache builds the cache.
func NewRedisStatsCache(r *Redis, ttl time.Duration, logger *zap.Logger) *RedisStatsCache {
	return &RedisStatsCache{redis: r, ttl: ttl, logger: logger}
}

// GetStats returns the cached snapshot for the group, or (nil, false) on miss
// or any cache failure. Cache errors are logged and treated as misses.
func (c *RedisStatsCache) GetStats(ctx context.Context, groupID string) (*domain.GroupStats, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, false
	}
	payload, err := c.redis.Client.Get(ctx, statsKeyPrefix+groupID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("stats cache read failed", zap.String("group_id", groupID), zap.Error(err))
		}
		return nil, false
	}
	var stats domain.GroupStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		c.logger.Warn("stats cache payload corrupt", zap.String("group_id", groupID), zap.Error(err))
		return nil, false
	}
	return &stats, true
}

// SetStats caches a snapshot with the configured TTL.
func (c *RedisStatsCache) SetStats(ctx context.Context, stats *domain.GroupStats) {
	if c == nil || c.redis == nil || c.redis.Client == nil || stats == nil {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, statsKeyPrefix+stats.GroupID, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("stats cache write failed", zap.String("group_id", stats.GroupID), zap.Error(err))
	}
}

// Invalidate drops the group's cached snapshot.
func (c *RedisStatsCache) Invalidate(ctx context.Context, groupID string) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	if err := c.redis.Client.Del(ctx, statsKeyPrefix+groupID).Err(); err != nil {
		c.logger.Warn("stats cache invalidation failed", zap.String("group_id", groupID), zap.Error(err))
	}
}
