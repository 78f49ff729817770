package cache

import (
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore returns a Redis-backed store when a client is available
// and falls back to a process-local store otherwise
func NewIdempotencyStore(client redis.UniversalClient, logger *zap.Logger) shared.IdempotencyStore {
	if client != nil {
		return NewRedisIdempotencyStore(client, "")
	}
	logger.Warn("Redis disabled, using in-memory idempotency store; duplicates are only suppressed per instance")
	return NewInMemoryIdempotencyStore(0)
}
