package kv_test

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	mrand "math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/oxygen/pkg/configs"
	dbc "github.com/yeisme/oxygen/pkg/internal/storage/db"
	"github.com/yeisme/oxygen/pkg/internal/storage/kv"
)

func newMemory(t testing.TB) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), &configs.KVConfig{Type: configs.KVTypeMemory}, kv.Deps{})
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}

	return store
}

func newGroupcache(t testing.TB, name string) kv.KVStore {
	t.Helper()

	cfg := &configs.KVConfig{
		Type: configs.KVTypeGroupcache,
		Groupcache: configs.GroupcacheKVConfig{
			Name:       name,
			CacheBytes: 32 * 1024 * 1024, // 32MB
		},
	}

	store, err := kv.NewKVStore(context.Background(), cfg, kv.Deps{})
	if err != nil {
		t.Fatalf("create groupcache kv: %v", err)
	}

	return store
}

func newDBKV(t testing.TB) kv.KVStore {
	t.Helper()

	ctx := context.Background()

	client, err := dbc.New(ctx, &configs.DBConfig{
		Type:          configs.SQLite,
		Path:          filepath.Join(t.TempDir(), "kv.db"),
		BusyTimeoutMS: configs.DefaultBusyTimeoutMS,
	}, dbc.Options{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	if err := client.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := kv.NewKVStore(ctx, &configs.KVConfig{Type: configs.KVTypeDB}, kv.Deps{DB: client.DB})
	if err != nil {
		t.Fatalf("create db kv: %v", err)
	}

	return store
}

// exerciseStore 对任意实现执行相同的行为校验.
func exerciseStore(t *testing.T, store kv.KVStore) {
	t.Helper()

	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := store.Set(ctx, "settings.a", []byte("1"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := store.Set(ctx, "settings.a", []byte("2"), 0); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := store.Get(ctx, "settings.a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if string(got) != "2" {
		t.Errorf("expected overwritten value 2, got %q", got)
	}

	if err := store.Set(ctx, "settings.b", []byte("x"), time.Hour); err != nil {
		t.Fatalf("set with ttl: %v", err)
	}

	if err := store.Set(ctx, "other", []byte("y"), 0); err != nil {
		t.Fatalf("set other: %v", err)
	}

	keys, err := store.Keys(ctx, "settings.*")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}

	sort.Strings(keys)

	if len(keys) != 2 || keys[0] != "settings.a" || keys[1] != "settings.b" {
		t.Errorf("unexpected keys %v", keys)
	}

	if ok, _ := store.Exists(ctx, "settings.b"); !ok {
		t.Error("settings.b should exist")
	}

	if err := store.Delete(ctx, "settings.a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := store.Delete(ctx, "settings.a"); err != nil {
		t.Fatalf("delete missing should be a no-op: %v", err)
	}

	if _, err := store.Get(ctx, "settings.a"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseStore(t, newMemory(t))
}

func TestGroupcacheKV(t *testing.T) {
	exerciseStore(t, newGroupcache(t, "test-groupcache-behaviour"))
}

func TestDBKV(t *testing.T) {
	exerciseStore(t, newDBKV(t))
}

func TestGroupcacheKVSetReplacesCachedValue(t *testing.T) {
	ctx := context.Background()
	store := newGroupcache(t, "test-groupcache-replace")

	for _, v := range []string{"first", "second", "third"} {
		if err := store.Set(ctx, "k", []byte(v), 0); err != nil {
			t.Fatalf("set: %v", err)
		}

		got, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("get: %v", err)
		}

		if string(got) != v {
			t.Errorf("expected %q, got %q", v, got)
		}
	}
}

func TestGroupcacheKVDuplicateName(t *testing.T) {
	newGroupcache(t, "test-groupcache-dup")

	cfg := &configs.KVConfig{
		Type:       configs.KVTypeGroupcache,
		Groupcache: configs.GroupcacheKVConfig{Name: "test-groupcache-dup", CacheBytes: 1 << 20},
	}

	if _, err := kv.NewKVStore(context.Background(), cfg, kv.Deps{}); err == nil {
		t.Error("expected error for duplicate group name")
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()

	stores := map[string]kv.KVStore{
		"memory": newMemory(t),
		"db":     newDBKV(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "short", []byte("v"), 20*time.Millisecond); err != nil {
				t.Fatalf("set: %v", err)
			}

			if _, err := store.Get(ctx, "short"); err != nil {
				t.Fatalf("value should be readable before expiry: %v", err)
			}

			time.Sleep(50 * time.Millisecond)

			if _, err := store.Get(ctx, "short"); !errors.Is(err, kv.ErrKeyNotFound) {
				t.Errorf("expected expiry, got %v", err)
			}

			keys, _ := store.Keys(ctx, "")
			for _, k := range keys {
				if k == "short" {
					t.Error("expired key listed")
				}
			}
		})
	}
}

func TestPrefixStore(t *testing.T) {
	ctx := context.Background()
	base := newMemory(t)
	store := kv.WithPrefix(base, "oxygen.cache.")

	if err := store.Set(ctx, "file.1", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ok, _ := base.Exists(ctx, "oxygen.cache.file.1"); !ok {
		t.Error("prefixed key missing in base store")
	}

	keys, err := store.Keys(ctx, "")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}

	if len(keys) != 1 || keys[0] != "file.1" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestUnsupportedType(t *testing.T) {
	if _, err := kv.NewKVStore(context.Background(), &configs.KVConfig{Type: "etcd"}, kv.Deps{}); err == nil {
		t.Error("expected error for unsupported type")
	}

	if _, err := kv.NewKVStore(context.Background(), &configs.KVConfig{Type: configs.KVTypeDB}, kv.Deps{}); err == nil {
		t.Error("expected error for db kv without database")
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	store := newMemory(b)

	benchKV(b, "memory", store)
	benchKVParallel(b, "memory", store)
	_ = store.Close()
}

func BenchmarkGroupcacheKV(b *testing.B) {
	store := newGroupcache(b, "bench-groupcache")

	benchKV(b, "groupcache", store)
	benchKVParallel(b, "groupcache", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_REDIS_BENCH=1 and REDIS_ADDR set (default 127.0.0.1:6379).
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	cfg := &configs.KVConfig{Type: configs.KVTypeRedis, Redis: configs.RedisKVConfig{Addr: addr}}

	store, err := kv.NewKVStore(context.Background(), cfg, kv.Deps{})
	if err != nil {
		b.Skipf("redis not available: %v", err)

		return
	}

	benchKV(b, "redis", store)
	benchKVParallel(b, "redis", store)
	_ = store.Close()
}

// Optional: enable with ENABLE_NATS_BENCH=1 and NATS_URL set (default nats://127.0.0.1:4222)
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "bench-kv"
	}

	cfg := &configs.KVConfig{Type: configs.KVTypeNATS, NATS: configs.NATSKVConfig{URL: url, Bucket: bucket}}

	store, err := kv.NewKVStore(context.Background(), cfg, kv.Deps{})
	if err != nil {
		b.Skipf("nats not available: %v", err)

		return
	}

	benchKV(b, "nats", store)
	benchKVParallel(b, "nats", store)
	_ = store.Close()
}

// randBytes returns n random bytes, seeded reproducibly for bench.
func randBytes(n int) []byte {
	b := make([]byte, n)
	// Try crypto/rand; if it fails (unlikely in tests), fallback to deterministic PRNG.
	if _, err := crand.Read(b); err != nil {
		mr := mrand.New(mrand.NewSource(42))
		for i := range b {
			b[i] = byte(mr.Intn(256))
		}
	}

	return b
}

// benchKV 执行基本的 Set/Get/Delete 基准测试.
func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	sizes := []int{32, 1024, 64 * 1024}
	ttls := []time.Duration{0, 5 * time.Second}

	for _, size := range sizes {
		payload := randBytes(size)
		for _, ttl := range ttls {
			b.Run(fmt.Sprintf("%s/size=%d/ttl=%s", name, size, ttl), func(b *testing.B) {
				// ensure clean
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// Use hyphens to ensure keys are valid for NATS KV
					key := fmt.Sprintf("bench-%s-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("set failed: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get failed: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("delete failed: %v", err)
					}
				}
			})
		}
	}
}

// benchKVParallel 执行并行的 Set/Get/Delete 基准测试.
func benchKVParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	size := 1024
	payload := randBytes(size)

	var ctr uint64

	b.Run(fmt.Sprintf("%s/parallel", name), func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				i := atomic.AddUint64(&ctr, 1)

				// Use hyphens to ensure keys are valid for NATS KV
				key := fmt.Sprintf("bench-%s-p-%d", name, i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete failed: %v", err)
				}
			}
		})
	})
}
