package configs

import (
	"time"

	"github.com/spf13/viper"
)

// ClientConfig 展示端（或 CLI 远程模式）访问门面服务的配置.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url" rule:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout"  rule:"min=1ms"`
	Token   string        `mapstructure:"token"`
}

func (c *ClientConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("client.base_url", "http://127.0.0.1:17890")
	v.SetDefault("client.timeout", "15s")
	v.SetDefault("client.token", "")
}
