package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flexpay/payment-service/internal/domain/model"
	domainRepo "github.com/flexpay/payment-service/internal/domain/repository"
)

const paymentCacheKeyPrefix = "payment:"

// redisPaymentCache implements PaymentCache on Redis. Entries expire after a
// configured TTL and are invalidated on every status change.
type redisPaymentCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisPaymentCache creates a Redis-backed payment cache.
func NewRedisPaymentCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) domainRepo.PaymentCache {
	return &redisPaymentCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *redisPaymentCache) Get(ctx context.Context, id string) (*model.Payment, error) {
	data, err := c.client.Get(ctx, paymentCacheKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read payment from cache: %w", err)
	}

	var payment model.Payment
	if err := json.Unmarshal(data, &payment); err != nil {
		// A corrupt entry is treated as a miss.
		c.logger.Warn("Dropping unreadable cache entry",
			zap.String("payment_id", id),
			zap.Error(err))
		c.client.Del(ctx, paymentCacheKeyPrefix+id)
		return nil, nil
	}

	return &payment, nil
}

func (c *redisPaymentCache) Set(ctx context.Context, payment *model.Payment) error {
	data, err := json.Marshal(payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment for cache: %w", err)
	}

	if err := c.client.Set(ctx, paymentCacheKeyPrefix+payment.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write payment to cache: %w", err)
	}

	return nil
}

func (c *redisPaymentCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, paymentCacheKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached payment: %w", err)
	}
	return nil
}
