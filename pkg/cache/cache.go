// Package cache 在 KV 存储之上提供类型化的读缓存.
//
// 值使用 sonic 序列化；未命中返回 ErrMiss，其它错误（连接失败、反序列化失败）调用方可同样按未命中回源.
//
//	c := cache.NewCache(store)
//	rec, err := cache.Get[Record](ctx, c, cache.Key("file", id))
//	rec, err = cache.GetOrSet(ctx, c, key, load, time.Minute)
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang/groupcache/singleflight"

	"github.com/yeisme/oxygen/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = errors.New("cache: miss")

// Cache 类型化读缓存，同一键的并发回源会合并为一次.
type Cache struct {
	store  kv.KVStore
	flight singleflight.Group
}

// NewCache 创建缓存.
func NewCache(store kv.KVStore) *Cache {
	return &Cache{store: store}
}

// Key 用 "." 拼接缓存键，对 NATS KV 等后端也是合法键.
func Key(parts ...string) string {
	return strings.Join(parts, ".")
}

// Get 读取并反序列化，不存在时返回 ErrMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var value T

	data, err := c.store.Get(ctx, key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return value, ErrMiss
	}

	if err != nil {
		return value, err
	}

	if err := sonic.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("cache: decode %s: %w", key, err)
	}

	return value, nil
}

// Set 序列化后写入，ttl<=0 表示不过期.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}

	return c.store.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// GetOrSet 命中直接返回；否则调用 load 并写回，写回失败不影响返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error), ttl time.Duration) (T, error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	v, err := c.flight.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}

		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		var zero T

		return zero, err
	}

	return v.(T), nil
}

// Purge 删除匹配 glob 模式的键，返回删除数量.
func (c *Cache) Purge(ctx context.Context, pattern string) (int, error) {
	keys, err := c.store.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}

	for i, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			return i, err
		}
	}

	return len(keys), nil
}
