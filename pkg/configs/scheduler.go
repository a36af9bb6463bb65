package configs

import "github.com/spf13/viper"

// SchedulerConfig 定时任务配置.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// AuditCron 巡检已跟踪路径是否仍存在（只读，不修改记录）
	AuditCron string `mapstructure:"audit_cron"    rule:"required_if=Enabled true"`
	// SnapshotCron 导出活跃记录快照到 S3，仅当 s3.enabled 时注册
	SnapshotCron string `mapstructure:"snapshot_cron" rule:"required_if=Enabled true"`
}

func (c *SchedulerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.audit_cron", "*/10 * * * *")
	v.SetDefault("scheduler.snapshot_cron", "0 3 * * *")
}
