// Package middleware 提供 HTTP 中间件：请求 ID、日志、指标、追踪、鉴权、限流与熔断.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	oxctx "github.com/yeisme/oxygen/pkg/context"
	"github.com/yeisme/oxygen/pkg/internal/ids"
	"github.com/yeisme/oxygen/pkg/metrics"
)

// RequestIDHeader 请求 ID 的请求头与响应头.
const RequestIDHeader = "X-Request-ID"

// PrometheusMiddleware 创建Gin的Prometheus中间件，endpoint 使用路由模板避免标签膨胀.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		// 执行下一个中间件/处理器
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.RequestCounter.WithLabelValues(method, endpoint, statusLabel(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// RequestIDMiddleware 复用或生成请求 ID，写入 context 与响应头.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = ids.New()
		}

		c.Request = c.Request.WithContext(oxctx.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
