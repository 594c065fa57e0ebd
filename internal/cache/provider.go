package cache

// Package cache provides caching for payment callback idempotency and
// dashboard projections.

import (
	"context"
	"fmt"
	"time"
)

// Provider defines the interface for short-lived key/value caching
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// CallbackKey identifies a processed gateway callback by its transaction
// reference, so replayed callbacks become no-ops.
func CallbackKey(gateway, reference string) string {
	return fmt.Sprintf("callback:%s:%s", gateway, reference)
}

// DashboardKey identifies a cached dashboard projection.
func DashboardKey(scope string) string {
	return fmt.Sprintf("dashboard:%s", scope)
}
