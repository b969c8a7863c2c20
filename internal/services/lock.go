package services

import (
	"context"
	"fmt"
	"time"

	"eventbook/utils"

	"github.com/redis/go-redis/v9"
)

// EventLocker serializes booking mutations per event across instances.
// Correctness does not depend on it (the conditional capacity UPDATE is the
// real guard); the lock keeps concurrent requests from burning transactions
// against each other.
type EventLocker interface {
	Lock(ctx context.Context, eventID string) (func(), error)
}

type RedisEventLocker struct {
	Redis   *redis.Client
	TTL     time.Duration
	Timeout time.Duration
}

func NewRedisEventLocker(redisClient *redis.Client, timeout time.Duration) *RedisEventLocker {
	return &RedisEventLocker{
		Redis:   redisClient,
		TTL:     30 * time.Second,
		Timeout: timeout,
	}
}

func (l *RedisEventLocker) Lock(ctx context.Context, eventID string) (func(), error) {
	key := fmt.Sprintf("booking:lock:%s", eventID)
	token, err := utils.GenerateCode(8)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(l.Timeout)
	for {
		ok, err := l.Redis.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire booking lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("booking lock for event %s timed out", eventID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	release := func() {
		// Only drop the lock if it is still ours; an expired lock may have
		// been re-acquired by another instance.
		current, err := l.Redis.Get(context.Background(), key).Result()
		if err == nil && current == token {
			l.Redis.Del(context.Background(), key)
		}
	}
	return release, nil
}

// NoopLocker is used when Redis is disabled (single instance deployments
// rely on the transactional capacity update alone).
type NoopLocker struct{}

func (NoopLocker) Lock(ctx context.Context, eventID string) (func(), error) {
	return func() {}, nil
}
