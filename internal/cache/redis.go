package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache wraps the Redis client used for short-lived state: phone
// verification codes and rate-limit counters.
type Cache struct {
	client *redis.Client
}

func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func verifyKey(phoneNumber string) string {
	return "verify:" + phoneNumber
}

// SetVerificationCode stores a code for a phone number, replacing any
// previous one, with the given TTL.
func (c *Cache) SetVerificationCode(ctx context.Context, phoneNumber, code string, ttl time.Duration) error {
	return c.client.Set(ctx, verifyKey(phoneNumber), code, ttl).Err()
}

// GetVerificationCode fetches the pending code for a phone number.
func (c *Cache) GetVerificationCode(ctx context.Context, phoneNumber string) (string, error) {
	code, err := c.client.Get(ctx, verifyKey(phoneNumber)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cache: get verification code: %w", err)
	}
	return code, nil
}

// DeleteVerificationCode consumes a code so it cannot be replayed.
func (c *Cache) DeleteVerificationCode(ctx context.Context, phoneNumber string) error {
	return c.client.Del(ctx, verifyKey(phoneNumber)).Err()
}

// IncrementCounter bumps a counter key, setting the TTL on first use.
// Used to throttle SMS sends per phone number.
func (c *Cache) IncrementCounter(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache: incr %s: %w", key, err)
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return n, fmt.Errorf("cache: expire %s: %w", key, err)
		}
	}
	return n, nil
}
