package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	oxctx "github.com/yeisme/oxygen/pkg/context"
)

// GinLoggerMiddleware 使用zerolog记录Gin请求日志的中间件.
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// 执行下一个中间件/处理器
		c.Next()

		// 如果有查询参数，添加到路径中
		if raw != "" {
			path = path + "?" + raw
		}

		statusCode := c.Writer.Status()
		logger := oxctx.Logger(c.Request.Context())

		event := logger.Info()
		if statusCode >= 500 {
			event = logger.Error()
		}

		event = event.
			Int("status", statusCode).
			Dur("latency", time.Since(start)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("client_ip", c.ClientIP())

		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}

		event.Msg("HTTP request")
	}
}
