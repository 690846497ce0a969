package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/seafresh/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when a client is available
// and an in-memory store otherwise. The in-memory store does not share state
// across instances, so a webhook retried against another replica may be
// applied twice.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		logger.Info("using Redis idempotency store")
		return NewRedisIdempotencyStore(client, "")
	}
	logger.Warn("Redis unavailable, using in-memory idempotency store")
	return NewInMemoryIdempotencyStore()
}
