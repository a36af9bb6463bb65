package configs

import (
	"time"

	"github.com/spf13/viper"
)

// KV 存储类型.
const (
	KVTypeMemory     = "memory"
	KVTypeRedis      = "redis"
	KVTypeNATS       = "nats"
	KVTypeGroupcache = "groupcache"
	KVTypeDB         = "db"
)

// KVConfig 键值存储配置.
type KVConfig struct {
	Type       string             `mapstructure:"type"       rule:"oneof=memory redis nats groupcache db"`
	Prefix     string             `mapstructure:"prefix"`
	Redis      RedisKVConfig      `mapstructure:"redis"`
	NATS       NATSKVConfig       `mapstructure:"nats"`
	Groupcache GroupcacheKVConfig `mapstructure:"groupcache"`
}

// RedisKVConfig Redis KV 配置.
type RedisKVConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// NATSKVConfig NATS KV 配置.
type NATSKVConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Bucket   string `mapstructure:"bucket"   rule:"required"`
}

// GroupcacheKVConfig Groupcache KV 配置.
type GroupcacheKVConfig struct {
	Name       string   `mapstructure:"name"        rule:"required"`
	CacheBytes int64    `mapstructure:"cache_bytes" rule:"min=1048576"` // 最小1MB
	Peers      []string `mapstructure:"peers"`
	Self       string   `mapstructure:"self"`
}

// CacheConfig 元数据读缓存配置，缓存后端复用 KV 实现.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	KV      KVConfig      `mapstructure:"kv"`
}

// GetKVType 返回当前配置的 KV 类型.
func (c *KVConfig) GetKVType() string {
	return c.Type
}

// setDefaults 设置 KV 配置的默认值.
func (c *KVConfig) setDefaults(v *viper.Viper) {
	setKVDefaults(v, "kv", KVTypeDB, "oxygen.kv.")
}

// setDefaults 设置缓存配置的默认值.
func (c *CacheConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "10m")
	setKVDefaults(v, "cache.kv", KVTypeMemory, "oxygen.cache.")
}

func setKVDefaults(v *viper.Viper, prefix, typ, keyPrefix string) {
	v.SetDefault(prefix+".type", typ)
	v.SetDefault(prefix+".prefix", keyPrefix)

	// Redis 默认值
	v.SetDefault(prefix+".redis.addr", "localhost:6379")
	v.SetDefault(prefix+".redis.password", "")
	v.SetDefault(prefix+".redis.db", 0)

	// NATS 默认值
	v.SetDefault(prefix+".nats.url", "nats://localhost:4222")
	v.SetDefault(prefix+".nats.user", "")
	v.SetDefault(prefix+".nats.password", "")
	v.SetDefault(prefix+".nats.bucket", "oxygen-kv")

	const maxGroupcacheCacheBytes = 64 * 1024 * 1024 // 64MB
	// Groupcache 默认值
	v.SetDefault(prefix+".groupcache.name", "oxygen-cache")
	v.SetDefault(prefix+".groupcache.cache_bytes", maxGroupcacheCacheBytes)
	v.SetDefault(prefix+".groupcache.peers", []string{})
	v.SetDefault(prefix+".groupcache.self", "")
}
