package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/cultivo/cultivo/internal/ports"
	"github.com/cultivo/cultivo/internal/service/logger"
)

// Config controls the Redis-backed rate limiter.
type Config struct {
	Enabled  bool
	RedisURL string
}

// New creates a rate limit service. When disabled it returns a noop limiter
// that allows everything.
func New(config Config, log logger.Logger) (ports.RateLimitService, error) {
	if !config.Enabled {
		return &noopService{}, nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisService{client: client, log: log}, nil
}

// redisService implements a fixed-window counter per key.
type redisService struct {
	client *redis.Client
	log    logger.Logger
}

func (s *redisService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	countKey := "ratelimit:" + key

	count, err := s.client.Incr(ctx, countKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment counter: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, countKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set counter window: %w", err)
		}
	}
	return count <= int64(limit), nil
}

func (s *redisService) Block(ctx context.Context, key string, duration time.Duration) error {
	if err := s.client.Set(ctx, "ratelimit:block:"+key, "1", duration).Err(); err != nil {
		return fmt.Errorf("failed to set block: %w", err)
	}
	s.log.Warn(ctx, "client blocked", map[string]interface{}{
		"key":      key,
		"duration": duration.String(),
	})
	return nil
}

func (s *redisService) IsBlocked(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, "ratelimit:block:"+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return n > 0, nil
}

type noopService struct{}

func (s *noopService) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, nil
}

func (s *noopService) Block(ctx context.Context, key string, duration time.Duration) error {
	return nil
}

func (s *noopService) IsBlocked(ctx context.Context, key string) (bool, error) {
	return false, nil
}
