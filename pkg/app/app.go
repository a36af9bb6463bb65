// Package app 提供应用程序的初始化、运行与优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/oxygen/pkg/api"
	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/handle"
	"github.com/yeisme/oxygen/pkg/internal/jobs"
	"github.com/yeisme/oxygen/pkg/internal/storage"
	"github.com/yeisme/oxygen/pkg/log"
	"github.com/yeisme/oxygen/pkg/metrics"
	"github.com/yeisme/oxygen/pkg/middleware"
	"github.com/yeisme/oxygen/pkg/scheduler"
	"github.com/yeisme/oxygen/pkg/tracing"
)

// App 门面服务进程.
type App struct {
	Engine *gin.Engine

	core   *Core
	sched  *scheduler.Scheduler
	server *http.Server
	config *configs.AppConfig

	// baseCtx 是所有请求 ctx 的父 ctx，退出时取消以结束 SSE 等长连接.
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// NewApp 按配置初始化追踪、指标、存储、门面、定时任务与路由.
func NewApp(ctx context.Context, config *configs.AppConfig) (a *App, err error) {
	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	core, err := NewCore(ctx, config, storage.Options{Registerer: metrics.GetRegistry()})
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = core.Close(context.Background())
		}
	}()

	var sched *scheduler.Scheduler

	if config.Scheduler.Enabled {
		if sched, err = scheduler.NewScheduler(); err != nil {
			return nil, fmt.Errorf("init scheduler: %w", err)
		}

		deps := jobs.Deps{Audit: core.Audit}
		if core.Storage.S3 != nil {
			deps.Snapshot = core.Snapshot
		}

		if err = jobs.RegisterCronJobs(sched, config.Scheduler, deps); err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("register jobs: %w", err)
		}
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.CORSMiddleware(config.Server),
		middleware.AuthMiddleware(config.Facade),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
	)

	if config.Server.Gzip {
		engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{api.BasePath + "/events"})))
	}

	if err = metrics.StartMetricsServer(config.Metrics, engine); err != nil {
		return nil, err
	}

	api.RegisterGroup(engine, &handle.Handlers{
		API:       core.Facade,
		Settings:  core.Settings,
		Snapshot:  core.Snapshot,
		Audit:     core.Audit,
		Storage:   core.Storage,
		Scheduler: sched,
	}, config.Server)

	baseCtx, cancelBase := context.WithCancel(context.Background())

	return &App{
		Engine: engine,
		core:   core,
		sched:  sched,
		config: config,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
			Handler:           engine,
			ReadHeaderTimeout: config.Server.GetTimeoutDuration(),
			BaseContext:       func(net.Listener) context.Context { return baseCtx },
		},
		baseCtx:    baseCtx,
		cancelBase: cancelBase,
	}, nil
}

// Run 启动调度器与 HTTP 服务，ctx 结束后优雅退出.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		_ = a.Shutdown(context.Background())
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}

	return a.Serve(ctx, ln)
}

// Serve 在给定监听器上提供服务，ctx 结束后优雅退出.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	if a.sched != nil {
		a.sched.Start()
	}

	errCh := make(chan error, 1)

	go func() {
		log.Logger().Info().Str("addr", ln.Addr().String()).Msg("server started")

		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var serveErr error

	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.GetShutdownDuration())
	defer cancel()

	return errors.Join(serveErr, a.Shutdown(shutdownCtx))
}

// Shutdown 依次：拒绝新门面请求并等待在途请求、停止定时任务、关闭 HTTP 服务、关闭存储、刷新追踪.
func (a *App) Shutdown(ctx context.Context) error {
	l := log.Logger()
	l.Info().Msg("shutting down")

	var errs []error

	if err := a.core.Facade.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain facade: %w", err))
	}

	if a.sched != nil {
		if err := a.sched.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}

	a.cancelBase()

	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errs = append(errs, fmt.Errorf("stop server: %w", err))
	}

	if err := a.core.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}

	return errors.Join(errs...)
}
