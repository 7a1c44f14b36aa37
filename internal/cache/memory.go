package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"dmsreport/internal/model"
)

// Memory is an in-process Store. Entries expire ttl after they were set.
type Memory struct {
	lru *expirable.LRU[string, *model.Dataset]
}

// NewMemory creates a Memory store holding at most size datasets.
func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, *model.Dataset](size, nil, ttl)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Get(_ context.Context, key string) (*model.Dataset, bool, error) {
	ds, ok := m.lru.Get(key)
	return ds, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, ds *model.Dataset) error {
	m.lru.Add(key, ds)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}
