package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/field-report-service/internal/persistence"
)

// redisLoginThrottle counts failed logins per email in Redis. Any Redis error
// fails open: throttling is a hardening measure, not a dependency.
type redisLoginThrottle struct {
	redis  *persistence.Redis
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewRedisLoginThrottle builds a throttle over the shared Redis client.
func NewRedisLoginThrottle(redis *persistence.Redis, limit int, window time.Duration, logger *zap.Logger) LoginThrottle {
	return &redisLoginThrottle{redis: redis, limit: limit, window: window, logger: logger}
}

func (t *redisLoginThrottle) TooManyAttempts(ctx context.Context, key string) bool {
	count, err := t.redis.Client.Get(ctx, t.key(key)).Int()
	if err != nil {
		return false
	}
	return count >= t.limit
}

func (t *redisLoginThrottle) RecordFailure(ctx context.Context, key string) {
	pipe := t.redis.Client.TxPipeline()
	pipe.Incr(ctx, t.key(key))
	pipe.Expire(ctx, t.key(key), t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("login throttle unavailable", zap.Error(err))
	}
}

func (t *redisLoginThrottle) key(email string) string {
	return "login_attempts:" + email
}
