package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key holds no value
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider is the shared key/value cache. Callers treat every error as
// a miss and fall back to the source of truth.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value; ttlSeconds <= 0 means no expiry
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// Increment bumps a counter, starting its expiry window on first use,
	// and returns the new value with the time left in the window
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
