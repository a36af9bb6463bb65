//go:build !no_groupcache

package kv

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/oxygen/pkg/configs"
)

// genSep 分隔业务键与版本号，groupcache 查询键形如 key\x00gen.
const genSep = "\x00"

// GroupcacheKV 基于 Groupcache 的 KV 实现.
//
// groupcache 本身不可变，写入后已加载的值不会被替换；这里给每个键维护版本号，
// Set/Delete 推进版本，读取时用新版本号作为查询键，旧值自然失效.
type GroupcacheKV struct {
	cache *groupcache.Group    // Groupcache 缓存组
	peers *groupcache.HTTPPool // 对等节点池
	data  map[string][]byte    // 本地存储数据（已做 TTL 包装）
	gen   map[string]uint64    // 每个键的版本号
	mu    sync.RWMutex         // 保护 data/gen 的读写锁
}

// groupcacheGetter 实现 groupcache.Getter 接口.
type groupcacheGetter struct {
	kv *GroupcacheKV
}

func (g *groupcacheGetter) Get(_ context.Context, query string, dest groupcache.Sink) error {
	key, _, _ := strings.Cut(query, genSep)

	g.kv.mu.RLock()
	value, exists := g.kv.data[key]
	g.kv.mu.RUnlock()

	if !exists {
		return notFound(key)
	}

	if err := dest.SetBytes(value); err != nil {
		return fmt.Errorf("failed to set bytes to sink: %w", err)
	}

	return nil
}

// NewGroupcacheKV 创建 Groupcache KV 实例.
// 同一进程内组名必须唯一.
func NewGroupcacheKV(_ context.Context, cfg *configs.KVConfig, _ Deps) (KVStore, error) {
	gcConfig := cfg.Groupcache

	if groupcache.GetGroup(gcConfig.Name) != nil {
		return nil, fmt.Errorf("groupcache group %q already registered", gcConfig.Name)
	}

	kv := &GroupcacheKV{
		data: make(map[string][]byte),
		gen:  make(map[string]uint64),
	}

	// 创建缓存组
	kv.cache = groupcache.NewGroup(gcConfig.Name, gcConfig.CacheBytes, &groupcacheGetter{kv: kv})

	// 如果有对等节点，设置 HTTP 池
	if len(gcConfig.Peers) > 0 {
		kv.peers = groupcache.NewHTTPPoolOpts(gcConfig.Self, &groupcache.HTTPPoolOptions{})
		kv.peers.Set(gcConfig.Peers...)
	}

	return kv, nil
}

func (g *GroupcacheKV) query(key string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.data[key]; !ok {
		return "", false
	}

	return key + genSep + strconv.FormatUint(g.gen[key], 10), true
}

// Get 获取键的值.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	query, ok := g.query(key)
	if !ok {
		return nil, notFound(key)
	}

	var data []byte

	if err := g.cache.Get(ctx, query, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	val, expired, err := openTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)

		return nil, notFound(key)
	}

	return val, nil
}

// Set 设置键的值.
func (g *GroupcacheKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	sealed := sealTTL(value, ttl, time.Now())

	g.mu.Lock()
	defer g.mu.Unlock()

	g.data[key] = sealed
	g.gen[key]++

	return nil
}

// Delete 删除键.
func (g *GroupcacheKV) Delete(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.data, key)
	// 保留版本号，重新写入时不会命中旧缓存
	g.gen[key]++

	return nil
}

// Exists 检查键是否存在.
func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.Get(ctx, key)

	return err == nil, nil
}

// Keys 获取所有匹配的键.
func (g *GroupcacheKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	now := time.Now()
	keys := make([]string, 0, len(g.data))

	for key, value := range g.data {
		if isExpired(value, now) {
			continue
		}

		if matchKey(pattern, key) {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Close 关闭缓存.
func (g *GroupcacheKV) Close() error {
	// Groupcache 没有显式的关闭方法，清空本地数据即可
	g.mu.Lock()
	defer g.mu.Unlock()

	g.data = make(map[string][]byte)

	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
