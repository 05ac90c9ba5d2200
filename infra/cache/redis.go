package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/impactlink/impactlink/pkg/cache"
	"github.com/redis/go-redis/v9"
)

// RedisEventCache implements cache.EventCache on Redis so duplicate
// webhook deliveries are suppressed across instances.
type RedisEventCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisEventCache creates a RedisEventCache from redis.Options.
func NewRedisEventCache(opt *redis.Options, prefix string, logger *slog.Logger) *RedisEventCache {
	return &RedisEventCache{
		client: redis.NewClient(opt),
		prefix: prefix,
		logger: logger,
	}
}

func (r *RedisEventCache) key(eventID string) string {
	return r.prefix + "evt:" + eventID
}

// Seen implements cache.EventCache.
func (r *RedisEventCache) Seen(ctx context.Context, eventID string) (bool, error) {
	err := r.client.Get(ctx, r.key(eventID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("event cache get error", "event_id", eventID, "error", err)
		return false, err
	}
	return true, nil
}

// Mark implements cache.EventCache.
func (r *RedisEventCache) Mark(ctx context.Context, eventID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(eventID), "1", ttl).Err(); err != nil {
		r.logger.Error("event cache set error", "event_id", eventID, "error", err)
		return err
	}
	return nil
}

// Ensure RedisEventCache implements the EventCache interface.
var _ cache.EventCache = (*RedisEventCache)(nil)
