// Package facade 是展示端访问宿主文件系统与元数据存储的唯一入口.
//
// 每个请求独立类型化与校验，只做 FileDetails 与存储记录之间的转换，不承载业务规则.
// 每次调用受超时约束；Close 之后拒绝新请求并等待在途请求结束.
package facade

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/oxygen/pkg/configs"
	oxctx "github.com/yeisme/oxygen/pkg/context"
	"github.com/yeisme/oxygen/pkg/internal/filestore"
	"github.com/yeisme/oxygen/pkg/internal/hostfs"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/metrics"
	"github.com/yeisme/oxygen/pkg/queue"
	"github.com/yeisme/oxygen/pkg/rule"
	"github.com/yeisme/oxygen/pkg/tracing"
)

// API 门面请求集合，本地 Facade 与 HTTP 客户端都实现它.
type API interface {
	ReadDir(ctx context.Context, path string) ([]string, error)
	IsDirectory(ctx context.Context, path string) (bool, error)
	Stat(ctx context.Context, path string) (types.StatResult, error)
	UpsertFileDetails(ctx context.Context, details types.FileDetails) error
	DeleteFile(ctx context.Context, path string) error
	GetAllFiles(ctx context.Context) ([]types.FileDetails, error)
	GetFileDetails(ctx context.Context, path string) (types.FileDetails, error)
	ReadFile(ctx context.Context, filename string) (types.ReadFileResponse, error)
	GetAppVersion(ctx context.Context) (types.AppVersionResponse, error)
}

var _ API = (*Facade)(nil)

const producer = "oxygen"

// Facade 本地门面实现.
type Facade struct {
	store *filestore.Store
	fs    *hostfs.FS

	timeout time.Duration
	maxRead int64
	version string
	logger  zerolog.Logger

	pub    message.Publisher
	events configs.EventsConfig

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// Option 配置 Facade.
type Option func(*Facade)

// WithTimeout 单次调用超时，<= 0 表示不限制.
func WithTimeout(d time.Duration) Option {
	return func(f *Facade) { f.timeout = d }
}

// WithMaxReadBytes read-file 的读取上限.
func WithMaxReadBytes(n int64) Option {
	return func(f *Facade) { f.maxRead = n }
}

// WithVersion 覆盖 get-app-version 返回的版本号.
func WithVersion(v string) Option {
	return func(f *Facade) { f.version = v }
}

// WithLogger 设置日志器.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Facade) { f.logger = l }
}

// WithPublisher 在写入或删除提交后按 events 开关发布变更事件.
func WithPublisher(pub message.Publisher, events configs.EventsConfig) Option {
	return func(f *Facade) {
		f.pub = pub
		f.events = events
	}
}

// New 创建门面.
func New(store *filestore.Store, fs *hostfs.FS, opts ...Option) *Facade {
	f := &Facade{
		store:   store,
		fs:      fs,
		timeout: configs.DefaultFacadeCallTimeout,
		maxRead: configs.DefaultFacadeMaxReadBytes,
		version: configs.AppVersion,
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// ReadDir 列出目录条目名称.
func (f *Facade) ReadDir(ctx context.Context, path string) ([]string, error) {
	return call(ctx, f, types.ReadDir, path, func(ctx context.Context) ([]string, error) {
		return f.fs.ReadDir(ctx, path)
	})
}

// IsDirectory 判断路径是否为目录.
func (f *Facade) IsDirectory(ctx context.Context, path string) (bool, error) {
	return call(ctx, f, types.IsDirectory, path, func(ctx context.Context) (bool, error) {
		return f.fs.IsDirectory(ctx, path)
	})
}

// Stat 返回创建时间、修改时间与扩展名.
func (f *Facade) Stat(ctx context.Context, path string) (types.StatResult, error) {
	return call(ctx, f, types.Stat, path, func(ctx context.Context) (types.StatResult, error) {
		info, err := f.fs.Stat(ctx, path)
		if err != nil {
			return types.StatResult{}, err
		}

		return types.StatResult{
			CreationTime:     info.CreationTime,
			ModificationTime: info.ModificationTime,
			Extension:        info.Extension,
		}, nil
	})
}

// UpsertFileDetails 按路径插入或整行替换.
func (f *Facade) UpsertFileDetails(ctx context.Context, details types.FileDetails) error {
	if err := rule.ValidateStruct(details); err != nil {
		return invalid("%s", rule.Describe(err))
	}

	_, err := call(ctx, f, types.UpsertFileDetails, details.Path, func(ctx context.Context) (struct{}, error) {
		if err := f.store.Upsert(ctx, toRecord(details)); err != nil {
			return struct{}{}, err
		}

		f.publishUpserted(ctx, details)

		return struct{}{}, nil
	})

	return err
}

// DeleteFile 按路径硬删除，不存在时静默成功.
func (f *Facade) DeleteFile(ctx context.Context, path string) error {
	_, err := call(ctx, f, types.DeleteFile, path, func(ctx context.Context) (struct{}, error) {
		if err := f.store.Delete(ctx, path); err != nil {
			return struct{}{}, err
		}

		f.publishDeleted(ctx, path)

		return struct{}{}, nil
	})

	return err
}

// GetAllFiles 返回全部活跃记录.
func (f *Facade) GetAllFiles(ctx context.Context) ([]types.FileDetails, error) {
	return call(ctx, f, types.GetAllFiles, "", func(ctx context.Context) ([]types.FileDetails, error) {
		recs, err := f.store.ListActive(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]types.FileDetails, 0, len(recs))
		for _, r := range recs {
			out = append(out, fromRecord(r))
		}

		return out, nil
	})
}

// GetFileDetails 按路径读取记录.
func (f *Facade) GetFileDetails(ctx context.Context, path string) (types.FileDetails, error) {
	return call(ctx, f, types.GetFileDetails, path, func(ctx context.Context) (types.FileDetails, error) {
		r, err := f.store.GetByPath(ctx, path)
		if err != nil {
			return types.FileDetails{}, err
		}

		return fromRecord(r), nil
	})
}

// ReadFile 按展示文件名找到记录并读取宿主文件内容.
func (f *Facade) ReadFile(ctx context.Context, filename string) (types.ReadFileResponse, error) {
	if filename == "" {
		return types.ReadFileResponse{}, invalid("filename is required")
	}

	return call(ctx, f, types.ReadFile, filename, func(ctx context.Context) (types.ReadFileResponse, error) {
		r, err := f.store.FindByFilename(ctx, filename)
		if err != nil {
			return types.ReadFileResponse{}, err
		}

		data, err := f.fs.ReadFile(ctx, r.Path, f.maxRead)
		if err != nil {
			return types.ReadFileResponse{}, err
		}

		return types.ReadFileResponse{Filename: r.Filename, Path: r.Path, Content: string(data)}, nil
	})
}

// GetAppVersion 返回应用版本与请求集合版本.
func (f *Facade) GetAppVersion(ctx context.Context) (types.AppVersionResponse, error) {
	return call(ctx, f, types.GetAppVersion, "", func(context.Context) (types.AppVersionResponse, error) {
		return types.AppVersionResponse{Version: f.version, APIVersion: types.APIVersion}, nil
	})
}

// Close 停止接受新请求并等待在途请求结束；ctx 结束时提前返回其错误.
func (f *Facade) Close(ctx context.Context) error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	done := make(chan struct{})

	go func() {
		f.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Facade) enter() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false
	}

	f.inflight.Add(1)

	return true
}

// call 为单次请求施加超时、追踪、指标与日志.
// fn 在独立 goroutine 中执行，超时后调用方立即返回，在途计数在 fn 真正结束时才释放.
func call[T any](ctx context.Context, f *Facade, name types.RequestName, subject string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if !f.enter() {
		return zero, ErrClosed
	}

	if subject == "" && needsPath(name) {
		f.inflight.Done()
		return zero, invalid("path is required")
	}

	cancel := context.CancelFunc(func() {})
	if f.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
	}

	ctx, span := tracing.StartSpan(ctx, "facade."+string(name),
		trace.WithAttributes(attribute.String("oxygen.request", string(name))))

	start := time.Now()

	type result struct {
		v   T
		err error
	}

	ch := make(chan result, 1)

	go func() {
		defer f.inflight.Done()

		v, err := fn(ctx)
		ch <- result{v: v, err: err}
	}()

	var r result

	select {
	case r = <-ch:
	case <-ctx.Done():
		r = result{err: ctx.Err()}
	}

	cancel()
	f.observe(ctx, span, name, subject, time.Since(start), r.err)

	return r.v, r.err
}

func needsPath(name types.RequestName) bool {
	switch name {
	case types.ReadDir, types.IsDirectory, types.Stat, types.DeleteFile, types.GetFileDetails, types.UpsertFileDetails:
		return true
	default:
		return false
	}
}

func (f *Facade) observe(ctx context.Context, span trace.Span, name types.RequestName, subject string, elapsed time.Duration, err error) {
	defer span.End()

	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
	}

	metrics.FacadeCalls.WithLabelValues(string(name), outcome).Inc()
	metrics.FacadeDuration.WithLabelValues(string(name)).Observe(elapsed.Seconds())

	l := oxctx.Enrich(ctx, f.logger)

	if err == nil {
		l.Debug().Str("request", string(name)).Str("subject", subject).Dur("elapsed", elapsed).Msg("facade call")
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)

	ev := l.Warn()
	if errors.Is(err, filestore.ErrNotFound) {
		ev = l.Debug()
	}

	ev.Err(err).Str("request", string(name)).Str("subject", subject).Str("kind", outcome).
		Dur("elapsed", elapsed).Msg("facade call failed")
}

func (f *Facade) publishUpserted(ctx context.Context, d types.FileDetails) {
	if f.pub == nil || !f.events.Enabled || !f.events.File.Upserted {
		return
	}

	payload := queue.FilePayload{
		Path:        d.Path,
		Filename:    d.Filename,
		IsDirectory: d.IsDirectory,
		IsActive:    d.IsActive,
	}

	if err := queue.PublishFileUpserted(f.pub, payload, f.headerOpts(ctx)...); err != nil {
		l := oxctx.Enrich(ctx, f.logger)
		l.Warn().Err(err).Str("path", d.Path).Msg("publish file upserted")
	}
}

func (f *Facade) publishDeleted(ctx context.Context, path string) {
	if f.pub == nil || !f.events.Enabled || !f.events.File.Deleted {
		return
	}

	if err := queue.PublishFileDeleted(f.pub, path, f.headerOpts(ctx)...); err != nil {
		l := oxctx.Enrich(ctx, f.logger)
		l.Warn().Err(err).Str("path", path).Msg("publish file deleted")
	}
}

func (f *Facade) headerOpts(ctx context.Context) []func(*queue.EventHeader) {
	opts := []func(*queue.EventHeader){queue.WithProducer(producer)}

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	return opts
}
