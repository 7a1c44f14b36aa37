package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dmsreport/internal/model"
)

// Redis shares loaded datasets between service replicas. The key TTL is the validity window.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an existing client. Keys are stored as "<prefix>:<key>".
func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

var _ Store = (*Redis)(nil)

func (r *Redis) Get(ctx context.Context, key string) (*model.Dataset, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	ds, err := Decode(b)
	if err != nil {
		return nil, false, err
	}
	return ds, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, ds *model.Dataset) error {
	b, err := Encode(ds)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}
