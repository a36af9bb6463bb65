// Package hostfs 提供门面所需的宿主文件系统原语：列目录、判断目录、stat 与读取.
package hostfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/djherbis/times"
	"github.com/spf13/afero"
)

// ErrTooLarge 文件超过读取上限.
var ErrTooLarge = errors.New("file exceeds read limit")

// IOError 文件系统原语失败.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIOError 判断 err 链中是否包含 IOError.
func IsIOError(err error) bool {
	var ie *IOError

	return errors.As(err, &ie)
}

// StatInfo stat 结果.
type StatInfo struct {
	CreationTime     time.Time
	ModificationTime time.Time
	// Extension 含前导点，例如 ".go"；无扩展名时为空串
	Extension string
	Size      int64
	IsDir     bool
}

// FS 文件系统原语实现，底层为 afero.Fs，测试中可替换为内存文件系统.
type FS struct {
	fs afero.Fs
}

// New 基于给定 afero.Fs 创建.
func New(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewOS 使用真实操作系统文件系统.
func NewOS() *FS {
	return New(afero.NewOsFs())
}

// run 在独立 goroutine 中执行阻塞的文件系统调用，ctx 结束时立即返回.
func run[T any](ctx context.Context, op, path string, fn func() (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, &IOError{Op: op, Path: path, Err: err}
	}

	type result struct {
		v   T
		err error
	}

	ch := make(chan result, 1)

	go func() {
		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, &IOError{Op: op, Path: path, Err: ctx.Err()}
	case r := <-ch:
		if r.err != nil {
			return zero, &IOError{Op: op, Path: path, Err: r.err}
		}

		return r.v, nil
	}
}

// ReadDir 返回目录下的条目名称（按名称排序）.
func (f *FS) ReadDir(ctx context.Context, path string) ([]string, error) {
	return run(ctx, "readdir", path, func() ([]string, error) {
		infos, err := afero.ReadDir(f.fs, path)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(infos))
		for _, info := range infos {
			names = append(names, info.Name())
		}

		return names, nil
	})
}

// IsDirectory 判断路径是否为目录，路径不存在时返回 IOError.
func (f *FS) IsDirectory(ctx context.Context, path string) (bool, error) {
	return run(ctx, "isdir", path, func() (bool, error) {
		info, err := f.fs.Stat(path)
		if err != nil {
			return false, err
		}

		return info.IsDir(), nil
	})
}

// Stat 返回创建时间、修改时间与扩展名.
// 仅在真实文件系统且平台支持时读取创建时间，否则以修改时间代替.
func (f *FS) Stat(ctx context.Context, path string) (StatInfo, error) {
	return run(ctx, "stat", path, func() (StatInfo, error) {
		info, err := f.fs.Stat(path)
		if err != nil {
			return StatInfo{}, err
		}

		st := StatInfo{
			CreationTime:     info.ModTime(),
			ModificationTime: info.ModTime(),
			Extension:        filepath.Ext(path),
			Size:             info.Size(),
			IsDir:            info.IsDir(),
		}

		if _, ok := f.fs.(*afero.OsFs); ok {
			if ts, err := times.Stat(path); err == nil && ts.HasBirthTime() {
				st.CreationTime = ts.BirthTime()
			}
		}

		return st, nil
	})
}

// ReadFile 读取文件内容，超过 limit 字节时返回 ErrTooLarge；limit <= 0 表示不限制.
func (f *FS) ReadFile(ctx context.Context, path string, limit int64) ([]byte, error) {
	return run(ctx, "read", path, func() ([]byte, error) {
		file, err := f.fs.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			return nil, fmt.Errorf("%w: is a directory", fs.ErrInvalid)
		}

		var r io.Reader = file
		if limit > 0 {
			r = io.LimitReader(file, limit+1)
		}

		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		if limit > 0 && int64(len(data)) > limit {
			return nil, ErrTooLarge
		}

		return data, nil
	})
}

// Exists 路径是否存在；权限等其它错误以 IOError 返回.
func (f *FS) Exists(ctx context.Context, path string) (bool, error) {
	return run(ctx, "exists", path, func() (bool, error) {
		return afero.Exists(f.fs, path)
	})
}
