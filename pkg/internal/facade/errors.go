package facade

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/oxygen/pkg/internal/filestore"
	"github.com/yeisme/oxygen/pkg/internal/hostfs"
)

// Kind 门面错误类别，跨传输边界时以字符串形式传递.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNotFound       Kind = "not_found"
	KindIOError        Kind = "io_error"
	KindStorageError   Kind = "storage_error"
	KindTimeout        Kind = "timeout"
	KindUnavailable    Kind = "unavailable"
	KindInternal       Kind = "internal"
)

var (
	// ErrClosed 门面已关闭，不再接受新请求.
	ErrClosed = errors.New("facade closed")
	// ErrInvalidRequest 请求参数校验失败.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound 请求的记录不存在.
	ErrNotFound = filestore.ErrNotFound
)

// kinded 由携带类别的错误实现（例如 HTTP 客户端还原的远端错误）.
type kinded interface {
	ErrorKind() Kind
}

// KindOf 对错误分类，nil 返回空串.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrClosed):
		return KindUnavailable
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, filestore.ErrInvalidRecord):
		return KindInvalidRequest
	case errors.Is(err, filestore.ErrNotFound):
		return KindNotFound
	case hostfs.IsIOError(err):
		return KindIOError
	case filestore.IsStorageError(err):
		return KindStorageError
	default:
		return KindInternal
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
