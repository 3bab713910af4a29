package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache stores results in Redis under a shared key prefix.
type RedisCache struct {
	client *redis.Client
	opts   Options
	logger *zap.Logger
}

// NewRedisCache connects to opts.Address and verifies the connection.
func NewRedisCache(ctx context.Context, opts Options, logger *zap.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Address == "" {
		return nil, errors.New("redis cache requires an address")
	}
	if opts.TTL <= 0 {
		opts.TTL = constants.DefaultCacheTTL
	}
	if opts.Prefix == "" {
		opts.Prefix = constants.DefaultCacheKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Address, err)
	}

	logger.Info("connected to redis cache",
		zap.String("op", "cache.NewRedisCache"),
		zap.String("address", opts.Address),
		zap.Int("db", opts.DB),
		zap.Duration("ttl", opts.TTL),
	)
	return &RedisCache{client: client, opts: opts, logger: logger}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, r.opts.Prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("redis cache read failed",
				zap.String("op", "cache.RedisCache.Get"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, r.opts.Prefix+key, value, r.opts.TTL).Err(); err != nil {
		r.logger.Warn("redis cache write failed",
			zap.String("op", "cache.RedisCache.Set"),
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
