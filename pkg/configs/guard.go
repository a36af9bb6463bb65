package configs

import (
	"time"

	"github.com/spf13/viper"
)

// 长连接与健康检查默认不参与限流和熔断.
var defaultGuardExempt = []string{"/api/v1/events", "/api/v1/health"}

// RateLimitConfig 令牌桶限流配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"gte=0"`
	Burst   int     `mapstructure:"burst" rule:"gte=0"`
	// Key 限流维度：global、ip 或 header:<Header-Name>.
	Key string `mapstructure:"key"`
	// IdleTTL 按键限流器闲置超过该时长后回收.
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
	Exempt  []string      `mapstructure:"exempt"` // 路径前缀
}

// CircuitBreakerConfig 熔断配置，5xx 计为失败.
// Interval 为闭合状态下计数清零周期，OpenTimeout 为打开后转为半开的等待时间，
// HalfOpenRequests 为半开状态放行的请求数.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureRate      float64       `mapstructure:"failure_rate" rule:"gte=0,lte=1"`
	MinRequests      uint32        `mapstructure:"min_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
	HalfOpenRequests uint32        `mapstructure:"half_open_requests"`
	Exempt           []string      `mapstructure:"exempt"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.rps", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.key", "ip")
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)
	v.SetDefault("rate_limit.exempt", defaultGuardExempt)
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.failure_rate", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 20)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.open_timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.half_open_requests", 5)
	v.SetDefault("circuit_breaker.exempt", defaultGuardExempt)
}
