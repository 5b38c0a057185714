package core

import (
	"lms/internal/cache"
	"lms/internal/models"

	"go.uber.org/zap"
)

func NewCache(config models.CacheConfiguration) cache.ICache {
	switch config.Type {
	case "redis", "valkey":
		client, err := cache.NewRedisCache(*config.Redis)
		if err != nil {
			zap.L().Fatal("Failed to connect to the cache", zap.Error(err))
		}
		return client
	default:
		return nil
	}
}
