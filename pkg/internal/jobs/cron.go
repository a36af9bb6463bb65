// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/service"
	"github.com/yeisme/oxygen/pkg/log"
	"github.com/yeisme/oxygen/pkg/scheduler"
)

// Deps 定时任务依赖的服务，Snapshot 为 nil 时不注册快照任务.
type Deps struct {
	Audit    *service.AuditService
	Snapshot *service.SnapshotService
}

// RegisterCronJobs 配置业务定时任务：
//   - 按 audit_cron 巡检已跟踪路径
//   - 按 snapshot_cron 上传活跃记录快照（需要对象存储）
func RegisterCronJobs(sched *scheduler.Scheduler, cfg configs.SchedulerConfig, deps Deps) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if deps.Audit == nil {
		return fmt.Errorf("audit service is nil")
	}

	if err := sched.AddCron(JobFilesAudit, cfg.AuditCron, func(ctx context.Context) error {
		return runAudit(ctx, deps.Audit)
	}); err != nil {
		return err
	}

	if deps.Snapshot == nil {
		log.Logger().Info().Str("job", JobFilesSnapshot).Msg("s3 disabled, snapshot job not registered")
		return nil
	}

	return sched.AddCron(JobFilesSnapshot, cfg.SnapshotCron, func(ctx context.Context) error {
		return runSnapshot(ctx, deps.Snapshot)
	})
}

// runAudit 执行一次只读巡检并记录缺失路径.
func runAudit(ctx context.Context, svc *service.AuditService) error {
	l := log.Logger().With().Str("job", JobFilesAudit).Logger()

	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	for _, p := range report.Missing {
		l.Warn().Str("path", p).Msg("tracked path no longer exists")
	}

	l.Info().
		Int64("active", report.Active).
		Int64("total", report.Total).
		Int("missing", len(report.Missing)).
		Msg("audit done")

	return nil
}

// runSnapshot 上传一次快照.
func runSnapshot(ctx context.Context, svc *service.SnapshotService) error {
	key, err := svc.Upload(ctx)
	if errors.Is(err, service.ErrS3Disabled) {
		return nil
	}

	if err != nil {
		return err
	}

	log.Logger().Info().Str("job", JobFilesSnapshot).Str("key", key).Msg("snapshot done")

	return nil
}
