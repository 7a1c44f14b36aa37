package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dmsreport/internal/config"
	"dmsreport/internal/model"
)

// Store keeps loaded datasets for the validity window fixed at construction.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the cached dataset. ok is false on a miss or after the window expired.
	Get(ctx context.Context, key string) (ds *model.Dataset, ok bool, err error)
	// Set caches ds; the window starts now.
	Set(ctx context.Context, key string, ds *model.Dataset) error
	// Delete drops the entry so the next Get misses.
	Delete(ctx context.Context, key string) error
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// New builds the store selected by cfg.Backend.
func New(cfg config.CacheConfig) (Store, error) {
	ttl := time.Duration(cfg.TTLSec) * time.Second
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %ds", cfg.TTLSec)
	}

	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(4, ttl), nil
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is required for the redis cache backend")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedis(client, cfg.KeyPrefix, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %q", cfg.Backend)
	}
}

// Encode serializes a dataset for byte-oriented stores.
func Encode(ds *model.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ds); err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode.
func Decode(b []byte) (*model.Dataset, error) {
	var ds model.Dataset
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}
