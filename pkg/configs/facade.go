package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultFacadeCallTimeout  = 10 * time.Second // 单次门面调用的上限
	DefaultFacadeMaxReadBytes = 4 << 20          // read-file 最大读取 4MB
)

// FacadeConfig 控制展示端与特权端之间的门面调用.
type FacadeConfig struct {
	CallTimeout  time.Duration `mapstructure:"call_timeout"   rule:"min=1ms"`
	MaxReadBytes int64         `mapstructure:"max_read_bytes" rule:"min=1"`
	// Token 非空时，所有 /api 请求必须携带 Authorization: Bearer <token>
	Token     string   `mapstructure:"token"`
	SkipPaths []string `mapstructure:"skip_paths"` // 不校验 token 的路径前缀
}

func (c *FacadeConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("facade.call_timeout", DefaultFacadeCallTimeout)
	v.SetDefault("facade.max_read_bytes", DefaultFacadeMaxReadBytes)
	v.SetDefault("facade.token", "")
	v.SetDefault("facade.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
	})
}
