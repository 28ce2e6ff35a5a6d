package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockKeyPrefix = "lock:ticket:"
	lockTTL       = 10 * time.Second
	retryInterval = 25 * time.Millisecond
)

// Deletes the key only while the holder's token is still present.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisLocker serializes per-ticket mutations across service instances using
// SETNX with a TTL. When Redis is unreachable it degrades to the fallback
// locker so a single instance keeps working.
type RedisLocker struct {
	client   *redis.Client
	fallback KeyedLocker
	logger   *zap.Logger
}

// NewRedisLocker wraps the client; fallback must not be nil.
func NewRedisLocker(client *redis.Client, fallback KeyedLocker, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, fallback: fallback, logger: logger}
}

// Acquire polls SETNX until the lock is granted or ctx is done.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, lockTTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Warn("redis lock unavailable; using local lock", zap.Error(err))
			return l.fallback.Acquire(ctx, key)
		}
		if ok {
			return func() {
				// release must not depend on the request context
				bg, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := releaseScript.Run(bg, l.client, []string{redisKey}, token).Err(); err != nil {
					l.logger.Warn("redis lock release failed", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}

		select {
		case <-time.After(retryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
