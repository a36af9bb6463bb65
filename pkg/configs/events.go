package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig `mapstructure:"file"`
}

// FileEventsConfig 针对项目文件元数据的事件开关。
type FileEventsConfig struct {
	Upserted bool `mapstructure:"upserted"`
	Deleted  bool `mapstructure:"deleted"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用，侧边栏依赖变更通知刷新
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.file.upserted", true)
	v.SetDefault("events.file.deleted", true)
}
