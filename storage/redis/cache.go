// Package rediscache implements core.Cache on a Redis server.
package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/tutorbase/backend/core"
)

type Cache struct {
	client *redis.Client
}

var _ core.Cache = (*Cache)(nil) // interface compliance check

// New connects to Redis and pings it once to fail fast on bad config.
func New(ctx context.Context, conf core.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "getting cache key")
	}
	return data, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, expiry time.Duration) error {
	if err := c.client.Set(ctx, key, val, expiry).Err(); err != nil {
		return errors.Wrap(err, "setting cache key")
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "deleting cache keys")
	}
	return nil
}

func (c *Cache) Close() error { return c.client.Close() }
