// Package storage 聚合应用使用的存储资源：数据库、KV、读缓存、消息队列与 S3.
//
// Example:
//
//	mgr, err := storage.Open(ctx, &cfg, storage.Options{})
//	if err != nil {
//		return err // 数据库不可用时启动失败
//	}
//	defer mgr.Close()
//
//	files := filestore.New(mgr.DB.GetDB(), filestore.WithCache(mgr.Cache, cfg.Cache.TTL))
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/oxygen/pkg/cache"
	"github.com/yeisme/oxygen/pkg/configs"
	dbc "github.com/yeisme/oxygen/pkg/internal/storage/db"
	"github.com/yeisme/oxygen/pkg/internal/storage/kv"
	"github.com/yeisme/oxygen/pkg/internal/storage/mq"
	s3c "github.com/yeisme/oxygen/pkg/internal/storage/s3"
	nlog "github.com/yeisme/oxygen/pkg/log"
)

// Manager 聚合所有存储资源，未启用的资源为 nil.
type Manager struct {
	DB    *dbc.Client
	KV    kv.KVStore
	Cache *cache.Cache
	MQ    *mq.Client
	S3    *s3c.Client

	cacheKV kv.KVStore
}

// Options 打开存储时的可选项.
type Options struct {
	// Registerer 非空时注册 GORM 与 MQ 指标.
	Registerer prometheus.Registerer
	// SkipMQ 为 true 时不创建消息队列（CLI 一次性命令）.
	SkipMQ bool
	// SkipS3 为 true 时不连接对象存储.
	SkipS3 bool
}

// Open 依次初始化数据库（含迁移）、KV、缓存、MQ 与 S3；任一步失败都会释放已打开的资源.
func Open(ctx context.Context, cfg *configs.AppConfig, opts Options) (m *Manager, err error) {
	m = &Manager{}

	defer func() {
		if err != nil {
			_ = m.Close()
			m = nil
		}
	}()

	m.DB, err = dbc.New(ctx, &cfg.DB, dbc.Options{
		Metrics: opts.Registerer != nil && cfg.Metrics.Enabled,
		Debug:   cfg.Server.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err = m.DB.Migrate(ctx); err != nil {
		return nil, err
	}

	deps := kv.Deps{DB: m.DB.GetDB()}

	m.KV, err = kv.NewKVStore(ctx, &cfg.KV, deps)
	if err != nil {
		return nil, fmt.Errorf("open kv: %w", err)
	}

	if cfg.Cache.Enabled {
		m.cacheKV, err = kv.NewKVStore(ctx, &cfg.Cache.KV, deps)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}

		m.Cache = cache.NewCache(m.cacheKV)
	}

	if cfg.Events.Enabled && !opts.SkipMQ {
		var reg prometheus.Registerer
		if cfg.Metrics.Enabled {
			reg = opts.Registerer
		}

		m.MQ, err = mq.New(ctx, &cfg.MQ, mq.Options{Registerer: reg})
		if err != nil {
			return nil, err
		}
	}

	if cfg.S3.Enabled && !opts.SkipS3 {
		m.S3, err = s3c.New(ctx, &cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("open s3: %w", err)
		}
	}

	nlog.Logger().Info().
		Str("db", cfg.DB.GetDBType()).
		Str("kv", cfg.KV.Type).
		Bool("cache", m.Cache != nil).
		Bool("mq", m.MQ != nil).
		Bool("s3", m.S3 != nil).
		Msg("storage manager initialized")

	return m, nil
}

// Close 按打开的逆序关闭资源，可重复调用.
func (m *Manager) Close() error {
	var errs []error

	if m.S3 != nil {
		errs = append(errs, m.S3.Close())
		m.S3 = nil
	}

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
		m.MQ = nil
	}

	if m.cacheKV != nil {
		errs = append(errs, m.cacheKV.Close())
		m.cacheKV, m.Cache = nil, nil
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
		m.KV = nil
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}

	return errors.Join(errs...)
}
