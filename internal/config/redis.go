package config

import (
	"context"
	"fmt"
	"log"

	goredis "github.com/redis/go-redis/v9"
)

// Redis is the global cache client, nil when caching is disabled
var Redis *goredis.Client

// ConnectRedis opens the plafond cache connection. It returns nil, nil
// when REDIS_ENABLED is false.
func ConnectRedis(cfg *Config) (*goredis.Client, error) {
	if !cfg.Redis.Enabled {
		log.Println("⚠️ Redis disabled, plafond cache runs without Redis")
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   2,
		DialTimeout:  cfg.Redis.Timeout,
		ReadTimeout:  cfg.Redis.Timeout,
		WriteTimeout: cfg.Redis.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	Redis = rdb
	log.Printf("✅ Redis connected [%s/%d]", cfg.Redis.Addr, cfg.Redis.DB)
	return rdb, nil
}

// CloseRedis closes the cache connection if open
func CloseRedis() {
	if Redis == nil {
		return
	}
	_ = Redis.Close()
}
