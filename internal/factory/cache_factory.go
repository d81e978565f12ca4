package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shieldbox/shieldbox/internal/adapters/cache"
	"github.com/shieldbox/shieldbox/internal/config"
	"github.com/shieldbox/shieldbox/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates verdict caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVerdictCache creates a verdict cache based on the configuration
func (f *CacheFactory) CreateVerdictCache() (core.VerdictCache, error) {
	cacheCfg := f.cfg.GetCache()

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(cacheCfg.Capacity, f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, cacheCfg.Capacity, f.logger)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, cacheCfg.Capacity, f.logger)
	case "redis":
		return cache.NewRedisCache(
			cacheCfg.RedisAddr,
			cacheCfg.RedisPassword,
			cacheCfg.RedisDB,
			cacheCfg.Capacity,
			cacheCfg.RedisKeyPrefix,
			f.logger,
		)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}

// IsCacheEnabled returns whether the memoization tier is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
