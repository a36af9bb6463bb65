package kv

import (
	"context"
	"strings"
	"time"
)

// prefixStore 为所有键加统一前缀，便于多个用途共享同一后端.
type prefixStore struct {
	KVStore
	prefix string
}

// WithPrefix 返回带键前缀的 KVStore.
func WithPrefix(store KVStore, prefix string) KVStore {
	return &prefixStore{KVStore: store, prefix: prefix}
}

func (p *prefixStore) Get(ctx context.Context, key string) ([]byte, error) {
	return p.KVStore.Get(ctx, p.prefix+key)
}

func (p *prefixStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.KVStore.Set(ctx, p.prefix+key, value, ttl)
}

func (p *prefixStore) Delete(ctx context.Context, key string) error {
	return p.KVStore.Delete(ctx, p.prefix+key)
}

func (p *prefixStore) Exists(ctx context.Context, key string) (bool, error) {
	return p.KVStore.Exists(ctx, p.prefix+key)
}

func (p *prefixStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	keys, err := p.KVStore.Keys(ctx, p.prefix+pattern)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if rest, ok := strings.CutPrefix(k, p.prefix); ok {
			out = append(out, rest)
		}
	}

	return out, nil
}
