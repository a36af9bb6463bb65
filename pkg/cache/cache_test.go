package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/cache"
	"github.com/yeisme/oxygen/pkg/internal/storage/kv"
)

type entry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

func newCache(t *testing.T) (*cache.Cache, kv.KVStore) {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), nil, kv.Deps{})
	require.NoError(t, err)

	return cache.NewCache(store), store
}

func TestKey(t *testing.T) {
	assert.Equal(t, "file.abc", cache.Key("file", "abc"))
}

func TestGetSetDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	_, err := cache.Get[entry](ctx, c, "file.1")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, cache.Set(ctx, c, "file.1", entry{Path: "/a.go", Size: 3}, time.Minute))

	got, err := cache.Get[entry](ctx, c, "file.1")
	require.NoError(t, err)
	assert.Equal(t, entry{Path: "/a.go", Size: 3}, got)

	require.NoError(t, c.Delete(ctx, "file.1"))

	_, err = cache.Get[entry](ctx, c, "file.1")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestGetDecodeError(t *testing.T) {
	ctx := context.Background()
	c, store := newCache(t)

	require.NoError(t, store.Set(ctx, "file.bad", []byte("{not json"), 0))

	_, err := cache.Get[entry](ctx, c, "file.bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrMiss)
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	require.NoError(t, cache.Set(ctx, c, "file.ttl", entry{Path: "/t"}, 20*time.Millisecond))

	assert.Eventually(t, func() bool {
		_, err := cache.Get[entry](ctx, c, "file.ttl")

		return errors.Is(err, cache.ErrMiss)
	}, time.Second, 10*time.Millisecond)
}

func TestGetOrSet(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	var loads atomic.Int32

	load := func(context.Context) (entry, error) {
		loads.Add(1)

		return entry{Path: "/b.go"}, nil
	}

	for range 3 {
		got, err := cache.GetOrSet(ctx, c, "file.b", load, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "/b.go", got.Path)
	}

	assert.EqualValues(t, 1, loads.Load())
}

func TestGetOrSetLoadError(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	_, err := cache.GetOrSet(ctx, c, "file.err", func(context.Context) (entry, error) {
		return entry{}, assert.AnError
	}, time.Minute)
	assert.ErrorIs(t, err, assert.AnError)

	_, err = cache.Get[entry](ctx, c, "file.err")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestGetOrSetCollapsesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	var (
		loads   atomic.Int32
		release = make(chan struct{})
		wg      sync.WaitGroup
	)

	load := func(context.Context) (entry, error) {
		loads.Add(1)
		<-release

		return entry{Path: "/slow"}, nil
	}

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			got, err := cache.GetOrSet(ctx, c, "file.slow", load, time.Minute)
			assert.NoError(t, err)
			assert.Equal(t, "/slow", got.Path)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, loads.Load(), int32(8))
	assert.GreaterOrEqual(t, loads.Load(), int32(1))
}

type failingStore struct {
	kv.KVStore
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("write failed")
}

func TestGetOrSetIgnoresWriteFailure(t *testing.T) {
	_, store := newCache(t)
	c := cache.NewCache(failingStore{store})

	got, err := cache.GetOrSet(context.Background(), c, "file.w", func(context.Context) (entry, error) {
		return entry{Path: "/w"}, nil
	}, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "/w", got.Path)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	c, store := newCache(t)

	for _, k := range []string{"file.1", "file.2", "other.1"} {
		require.NoError(t, store.Set(ctx, k, []byte("{}"), 0))
	}

	n, err := c.Purge(ctx, "file.*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"other.1"}, keys)
}
