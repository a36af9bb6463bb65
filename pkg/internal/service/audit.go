package service

import (
	"context"
	"fmt"

	"github.com/yeisme/oxygen/pkg/internal/filestore"
	"github.com/yeisme/oxygen/pkg/internal/hostfs"
	nlog "github.com/yeisme/oxygen/pkg/log"
	"github.com/yeisme/oxygen/pkg/metrics"
)

// AuditReport 一次巡检的结果.
type AuditReport struct {
	Active  int64    `json:"active"`
	Total   int64    `json:"total"`
	Missing []string `json:"missing"`
}

// AuditService 只读巡检：统计记录数并找出宿主文件已不存在的活跃记录，不修改任何记录.
type AuditService struct {
	store *filestore.Store
	fs    *hostfs.FS
}

// NewAuditService 创建巡检服务.
func NewAuditService(store *filestore.Store, fs *hostfs.FS) *AuditService {
	return &AuditService{store: store, fs: fs}
}

// Run 执行一次巡检并更新指标.
func (s *AuditService) Run(ctx context.Context) (AuditReport, error) {
	active, total, err := s.store.Count(ctx)
	if err != nil {
		return AuditReport{}, err
	}

	recs, err := s.store.ListActive(ctx)
	if err != nil {
		return AuditReport{}, err
	}

	report := AuditReport{Active: active, Total: total, Missing: []string{}}

	for _, r := range recs {
		ok, err := s.fs.Exists(ctx, r.Path)
		if err != nil {
			if ctx.Err() != nil {
				return AuditReport{}, fmt.Errorf("audit interrupted: %w", ctx.Err())
			}

			nlog.Logger().Warn().Err(err).Str("path", r.Path).Msg("audit stat failed")

			continue
		}

		if !ok {
			report.Missing = append(report.Missing, r.Path)
		}
	}

	metrics.ProjectFiles.WithLabelValues("active").Set(float64(active))
	metrics.ProjectFiles.WithLabelValues("total").Set(float64(total))
	metrics.MissingFiles.Set(float64(len(report.Missing)))

	return report, nil
}
