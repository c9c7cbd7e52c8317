package caching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService wraps the redis-backed state the auth core needs: the revoked
// access-token blacklist and sign-in rate counters.
type CacheService interface {
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)

	IsRateLimited(ctx context.Context, key string, limit int) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("WARN: redis ping failed on initialization: %v (address: %s)", err, addr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // token already expired on its own
	}
	key := fmt.Sprintf("bizgate:token_blacklist:%s", tokenID)
	return r.client.Set(ctx, key, "revoked", ttl).Err()
}

func (r *redisCacheService) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	key := fmt.Sprintf("bizgate:token_blacklist:%s", tokenID)
	_, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	countStr, err := r.client.Get(ctx, fmt.Sprintf("bizgate:ratelimit:%s", key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return false, nil
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	fullKey := fmt.Sprintf("bizgate:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return r.client.Expire(ctx, fullKey, window).Err()
	}
	return nil
}
