// Package cache keeps the rendered public menu so GET /drinks can skip the
// repository. Writers invalidate it after every successful mutation, which
// also bumps a generation counter. Readers take the generation before they
// list the drinks and the cache refuses their payload if it has moved on, so
// a menu rendered from a snapshot older than the last write is never stored.
package cache

import (
	"context"
	"time"
)

const (
	menuKey         = "menu:short"
	generationKey   = "menu:generation"
	redisKeyPrefix  = "drinks:"
	defaultMenuTTL  = 5 * time.Minute
	errRedisClient  = "redis client is required"
	errRedisGetFmt  = "failed to get cached menu: %w"
	errRedisSetFmt  = "failed to cache menu: %w"
	errRedisGenFmt  = "failed to read menu generation: %w"
	errRedisDelFmt  = "failed to invalidate cached menu: %w"
	errRedisPingFmt = "failed to ping redis: %w"
)

// MenuCache stores the serialized short-form menu.
type MenuCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Generation(ctx context.Context) (uint64, error)
	// Set stores menu only while the generation still equals generation and
	// reports whether it did.
	Set(ctx context.Context, generation uint64, menu []byte) (bool, error)
	Invalidate(ctx context.Context) error
}
