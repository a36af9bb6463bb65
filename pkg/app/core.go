package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/filestore"
	"github.com/yeisme/oxygen/pkg/internal/hostfs"
	"github.com/yeisme/oxygen/pkg/internal/service"
	"github.com/yeisme/oxygen/pkg/internal/storage"
	"github.com/yeisme/oxygen/pkg/log"
)

// Core 门面与业务服务，serve 与本地 CLI 命令共用.
type Core struct {
	Storage  *storage.Manager
	Store    *filestore.Store
	Facade   *facade.Facade
	Settings *service.SettingsService
	Snapshot *service.SnapshotService
	Audit    *service.AuditService
}

// NewCore 打开存储并组装门面与服务；失败时已打开的资源会被释放.
func NewCore(ctx context.Context, cfg *configs.AppConfig, opts storage.Options) (*Core, error) {
	mgr, err := storage.Open(ctx, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	logger := log.Logger()

	storeOpts := []filestore.Option{filestore.WithLogger(logger.With().Str("component", "filestore").Logger())}
	if mgr.Cache != nil {
		storeOpts = append(storeOpts, filestore.WithCache(mgr.Cache, cfg.Cache.TTL))
	}

	store := filestore.New(mgr.DB.GetDB(), storeOpts...)
	fs := hostfs.NewOS()

	facadeOpts := []facade.Option{
		facade.WithTimeout(cfg.Facade.CallTimeout),
		facade.WithMaxReadBytes(cfg.Facade.MaxReadBytes),
		facade.WithLogger(logger.With().Str("component", "facade").Logger()),
	}
	if mgr.MQ != nil {
		facadeOpts = append(facadeOpts, facade.WithPublisher(mgr.MQ.Publisher(), cfg.Events))
	}

	f := facade.New(store, fs, facadeOpts...)

	var objects service.ObjectPutter
	if mgr.S3 != nil {
		objects = mgr.S3
	}

	return &Core{
		Storage:  mgr,
		Store:    store,
		Facade:   f,
		Settings: service.NewSettingsService(mgr.KV),
		Snapshot: service.NewSnapshotService(f, objects),
		Audit:    service.NewAuditService(store, fs),
	}, nil
}

// Close 先等待在途门面调用结束，再关闭存储.
func (c *Core) Close(ctx context.Context) error {
	return errors.Join(c.Facade.Close(ctx), c.Storage.Close())
}

// CoreOptions 一次性 CLI 命令使用的存储选项：内存消息队列只在进程内可见，不必创建.
func CoreOptions(cfg *configs.AppConfig) storage.Options {
	return storage.Options{SkipMQ: cfg.MQ.Type == configs.MQTypeMemory}
}
