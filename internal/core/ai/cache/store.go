package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"perfume-generator/internal/infrastructure/config"
)

// Store 模型回應快取
type Store interface {
	// Get 未命中時回傳 common.ErrCacheMiss
	Get(ctx context.Context, prompt string) (string, error)
	Set(ctx context.Context, prompt, value string) error
	GetStats() map[string]interface{}
	Close() error
}

var (
	_ Store = (*CacheManager)(nil)
	_ Store = (*Service)(nil)
)

// Key 計算提示詞的快取鍵
func Key(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(hash[:])
}

// NewStore 依設定建立快取；停用時回傳 nil
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendMemory, "":
		return NewManager(cfg.Cache), nil
	case config.CacheBackendRedis:
		svc, err := NewService(ctx, cfg.Cache, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
