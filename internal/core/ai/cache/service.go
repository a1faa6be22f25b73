package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"perfume-generator/internal/infrastructure/config"
	"perfume-generator/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "perfume:ai:response:"

// Service Redis 快取，供多個實例共用模型回應
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

// NewService 建立 Redis 快取並確認連線
func NewService(ctx context.Context, cacheCfg config.CacheConfig, redisCfg config.RedisConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newServiceWithClient(client, cacheCfg.TTL), nil
}

func newServiceWithClient(client *redis.Client, ttl time.Duration) *Service {
	return &Service{client: client, ttl: ttl}
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, prompt string) (string, error) {
	val, err := s.client.Get(ctx, s.redisKey(prompt)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			common.LogCacheMiss("redis")
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	common.LogCacheHit("redis")
	return val, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, prompt, value string) error {
	if err := s.client.Set(ctx, s.redisKey(prompt), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// GetStats 回傳連線池統計
func (s *Service) GetStats() map[string]interface{} {
	ps := s.client.PoolStats()
	return map[string]interface{}{
		"backend":     config.CacheBackendRedis,
		"hits":        ps.Hits,
		"misses":      ps.Misses,
		"timeouts":    ps.Timeouts,
		"total_conns": ps.TotalConns,
		"idle_conns":  ps.IdleConns,
	}
}

// Close 關閉連線
func (s *Service) Close() error {
	return s.client.Close()
}

func (s *Service) redisKey(prompt string) string {
	return redisKeyPrefix + Key(prompt)
}
