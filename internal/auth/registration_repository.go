package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRegistrationRepository records redeemed registration tokens in Redis.
// A marker outlives the token it belongs to, so TTL cleans up after expiry.
type RedisRegistrationRepository struct {
	client *redis.Client
}

func NewRedisRegistrationRepository(client *redis.Client) *RedisRegistrationRepository {
	return &RedisRegistrationRepository{client: client}
}

// IsConsumed reports whether the registration token was already redeemed
func (r *RedisRegistrationRepository) IsConsumed(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, registrationConsumedKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check registration token: %w", err)
	}
	return n > 0, nil
}

// MarkConsumed records the token as redeemed for ttl
func (r *RedisRegistrationRepository) MarkConsumed(ctx context.Context, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, registrationConsumedKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark registration token: %w", err)
	}
	return nil
}

// registrationConsumedKey generates a Redis key for a redeemed token
func registrationConsumedKey(token string) string {
	return fmt.Sprintf("registration_consumed:%s", hashToken(token))
}
