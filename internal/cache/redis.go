package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   redis.UniversalClient
	tokenTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, tokenTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), tokenTTL)
}

// NewRedisCacheWithClient keeps the cached token without expiry when
// tokenTTL is zero or negative.
func NewRedisCacheWithClient(client redis.UniversalClient, tokenTTL time.Duration) *RedisCache {
	if tokenTTL < 0 {
		tokenTTL = 0
	}
	return &RedisCache{client: client, tokenTTL: tokenTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetToken returns the cached current token, or nil on a miss.
func (c *RedisCache) GetToken(ctx context.Context) (*domain.AuthToken, error) {
	data, err := c.client.Get(ctx, tokenKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var token domain.AuthToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *RedisCache) SetToken(ctx context.Context, token *domain.AuthToken) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tokenKey(), payload, c.tokenTTL).Err()
}

// AcquireTicketLock reports false if another request already holds the lock
// for this booking.
func (c *RedisCache) AcquireTicketLock(ctx context.Context, bookingID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, ticketLockKey(bookingID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseTicketLock(ctx context.Context, bookingID int64) error {
	return c.client.Del(ctx, ticketLockKey(bookingID)).Err()
}

func tokenKey() string {
	return "cache:auth:token"
}

func ticketLockKey(bookingID int64) string {
	return fmt.Sprintf("lock:booking:%d:ticket", bookingID)
}
