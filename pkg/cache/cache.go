// Package cache provides the cache behind the historical tick provider:
// vendor responses for a fetch window are stored as JSON strings so
// repeated backfills of the same range skip the API entirely. Memory,
// Redis and a layered memory-over-Redis variant share one interface.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is the cache contract. Get unmarshals into dest; string
// destinations receive the stored payload verbatim.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
}
