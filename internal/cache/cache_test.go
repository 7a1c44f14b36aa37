package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmsreport/internal/config"
	"dmsreport/internal/model"
	"dmsreport/internal/table"
)

func sampleDataset() *model.Dataset {
	return &model.Dataset{
		LoadedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Tables: map[string]*table.Table{
			model.Documents: table.New("doc_id", "title", "created_at").
				MustAppend(int64(1), "Budget", time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)).
				MustAppend(int64(2), nil, nil),
			model.Users: table.New("user_id", "role").MustAppend(int64(9), "admin"),
		},
	}
}

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, time.Hour)

	_, ok, err := m.Get(ctx, "dataset")
	require.NoError(t, err)
	assert.False(t, ok)

	ds := sampleDataset()
	require.NoError(t, m.Set(ctx, "dataset", ds))

	got, ok, err := m.Get(ctx, "dataset")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, ds, got)

	require.NoError(t, m.Delete(ctx, "dataset"))
	_, ok, _ = m.Get(ctx, "dataset")
	assert.False(t, ok)
}

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, 20*time.Millisecond)

	require.NoError(t, m.Set(ctx, "dataset", sampleDataset()))
	assert.Eventually(t, func() bool {
		_, ok, _ := m.Get(ctx, "dataset")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestEncodeDecode(t *testing.T) {
	ds := sampleDataset()

	b, err := Encode(ds)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)

	assert.True(t, ds.LoadedAt.Equal(got.LoadedAt))
	docs := got.Table(model.Documents)
	require.Equal(t, 2, docs.Len())
	created, ok := docs.Row(0).Time("created_at")
	assert.True(t, ok)
	assert.Equal(t, 2024, created.Year())
	_, ok = docs.Row(1).Get("title")
	assert.False(t, ok)
	assert.Equal(t, 1, got.Table(model.Users).Len())
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("not a gob"))
	assert.Error(t, err)
}

func TestRedis_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	defer client.Close()

	r := NewRedis(client, "dmsreport", time.Hour)

	_, ok, err := r.Get(context.Background(), "dataset")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, "dmsreport:dataset", r.key("dataset"))
}

func TestNew(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		s, err := New(config.CacheConfig{Backend: BackendMemory, TTLSec: 60})
		require.NoError(t, err)
		assert.IsType(t, &Memory{}, s)
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		_, err := New(config.CacheConfig{Backend: BackendMemory})
		assert.Error(t, err)
	})

	t.Run("redis without address", func(t *testing.T) {
		_, err := New(config.CacheConfig{Backend: BackendRedis, TTLSec: 60})
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := New(config.CacheConfig{Backend: "memcached", TTLSec: 60})
		assert.Error(t, err)
	})
}
