// Package cache memoizes calculation results by request fingerprint, in
// process or in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"go.uber.org/zap"
)

// Repository stores serialized results under string keys.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// Options selects and tunes a cache backend.
type Options struct {
	Backend  string
	Address  string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// New builds the repository selected by opts.Backend.
func New(ctx context.Context, opts Options, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TTL <= 0 {
		opts.TTL = constants.DefaultCacheTTL
	}

	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	switch backend {
	case "", constants.CacheBackendNone:
		return Nop{}, nil
	case constants.CacheBackendMemory:
		return NewMemoryCache(opts.TTL), nil
	case constants.CacheBackendRedis:
		redisCache, err := NewRedisCache(ctx, opts, logger)
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool) { return "", false }

func (Nop) Set(context.Context, string, string) error { return nil }

// Fingerprint derives a stable key for v within namespace from its JSON encoding.
func Fingerprint(namespace string, v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint %s request: %w", namespace, err)
	}
	return namespace + ":" + strconv.FormatUint(xxhash.Sum64(payload), 16), nil
}

// Fetch returns the cached value for key, or computes, stores and returns it.
// The boolean reports a cache hit. Values that fail to decode are recomputed.
func Fetch[T any](ctx context.Context, repo Repository, key string, compute func() (T, error)) (T, bool, error) {
	if repo == nil {
		repo = Nop{}
	}

	if raw, ok := repo.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, true, nil
		}
	}

	value, err := compute()
	if err != nil {
		return value, false, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, false, nil
	}
	// A failed write only costs a recomputation next time.
	_ = repo.Set(ctx, key, string(encoded))
	return value, false, nil
}
