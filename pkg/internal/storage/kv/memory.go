package kv

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/yeisme/oxygen/pkg/configs"
)

// memEntry 以指针存入 sync.Map，过期删除时可用 CompareAndDelete 避免误删新值.
type memEntry struct {
	sealed []byte
}

// MemoryKV 基于 sync.Map 的内存 KV 实现，TTL 惰性过期.
type MemoryKV struct {
	data sync.Map // string -> *memEntry
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ *configs.KVConfig, _ Deps) (KVStore, error) {
	return &MemoryKV{}, nil
}

// Get 获取键的值，返回副本.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	v, exists := m.data.Load(key)
	if !exists {
		return nil, notFound(key)
	}

	e := v.(*memEntry)

	val, expired, err := openTTL(e.sealed, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		m.data.CompareAndDelete(key, e)

		return nil, notFound(key)
	}

	return bytes.Clone(val), nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data.Store(key, &memEntry{sealed: sealTTL(value, ttl, time.Now())})

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)

	return nil
}

// Exists 检查键是否存在且未过期.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)

	return err == nil, nil
}

// Keys 获取所有匹配且未过期的键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)
	now := time.Now()

	m.data.Range(func(key, value any) bool {
		k := key.(string)

		if isExpired(value.(*memEntry).sealed, now) {
			return true
		}

		if matchKey(pattern, k) {
			keys = append(keys, k)
		}

		return true
	})

	return keys, nil
}

// Close 内存实现无需释放资源.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
