// Package handle 提供请求处理器的实现，将 HTTP 请求转换为门面与服务调用.
package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	oxctx "github.com/yeisme/oxygen/pkg/context"
	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/service"
	"github.com/yeisme/oxygen/pkg/internal/storage"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/scheduler"
)

// Handlers 聚合处理器依赖，由应用层注入；未启用的组件为 nil.
type Handlers struct {
	API       facade.API
	Settings  *service.SettingsService
	Snapshot  *service.SnapshotService
	Audit     *service.AuditService
	Storage   *storage.Manager
	Scheduler *scheduler.Scheduler
}

// StatusOf 将门面错误类别映射为 HTTP 状态码.
func StatusOf(kind facade.Kind) int {
	switch kind {
	case facade.KindInvalidRequest:
		return http.StatusBadRequest
	case facade.KindNotFound:
		return http.StatusNotFound
	case facade.KindIOError:
		return http.StatusUnprocessableEntity
	case facade.KindTimeout:
		return http.StatusGatewayTimeout
	case facade.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError 以统一错误体响应，5xx 记录错误日志.
func writeError(c *gin.Context, err error) {
	kind := facade.KindOf(err)
	status := StatusOf(kind)

	if status >= http.StatusInternalServerError {
		l := oxctx.Logger(c.Request.Context())
		l.Error().Err(err).Str("kind", string(kind)).Str("route", c.FullPath()).Msg("request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, types.ErrorResponse{Error: string(kind), Message: err.Error()})
}

// unavailableError 组件未启用，映射为 503.
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

func (unavailableError) ErrorKind() facade.Kind { return facade.KindUnavailable }

func unavailable(component string) error {
	return unavailableError{msg: component + " not enabled"}
}
