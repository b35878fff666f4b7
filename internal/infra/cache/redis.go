package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"drinks-service/internal/config"

	"github.com/redis/go-redis/v9"
)

// setIfGeneration writes the menu only while the generation counter still
// holds the value the reader saw. A missing counter reads as 0.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if (current or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisMenuCache struct {
	client        *redis.Client
	key           string
	generationKey string
	ttl           time.Duration
}

func NewRedisMenuCache(client *redis.Client, ttl time.Duration) (*RedisMenuCache, error) {
	if client == nil {
		return nil, errors.New(errRedisClient)
	}
	if ttl <= 0 {
		ttl = defaultMenuTTL
	}
	return &RedisMenuCache{
		client:        client,
		key:           redisKeyPrefix + menuKey,
		generationKey: redisKeyPrefix + generationKey,
		ttl:           ttl,
	}, nil
}

// NewRedisClient connects to the configured server and pings it once.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf(errRedisPingFmt, err)
	}
	return client, nil
}

func (c *RedisMenuCache) Get(ctx context.Context) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf(errRedisGetFmt, err)
	}
	return data, true, nil
}

func (c *RedisMenuCache) Generation(ctx context.Context) (uint64, error) {
	generation, err := c.client.Get(ctx, c.generationKey).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf(errRedisGenFmt, err)
	}
	return generation, nil
}

func (c *RedisMenuCache) Set(ctx context.Context, generation uint64, menu []byte) (bool, error) {
	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{c.generationKey, c.key},
		strconv.FormatUint(generation, 10), menu, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf(errRedisSetFmt, err)
	}
	return stored == 1, nil
}

// Invalidate bumps the generation and drops the entry in one transaction.
func (c *RedisMenuCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf(errRedisDelFmt, err)
	}
	return nil
}
