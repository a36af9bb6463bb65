package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/metrics"
)

const bearerPrefix = "Bearer "

// AuthMiddleware 校验门面调用的共享令牌。
//   - facade.token 为空时不校验（仅监听本机时的默认值）
//   - 要求 Authorization: Bearer <token>
//   - 支持通过配置跳过某些路径（如 /metrics, /api/v1/health）.
func AuthMiddleware(conf configs.FacadeConfig) gin.HandlerFunc {
	token := strings.TrimSpace(conf.Token)

	return func(c *gin.Context) {
		if token == "" || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(header, bearerPrefix)), []byte(token)) != 1 {
			metrics.RejectedRequests.WithLabelValues("unauthorized").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.ErrorResponse{
				Error:   "unauthorized",
				Message: "missing or invalid bearer token",
			})

			return
		}

		c.Next()
	}
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
