// Package api 组装 HTTP 接口：/api/v1 路由组与调试模式下的 Swagger 文档.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/handle"
	"github.com/yeisme/oxygen/pkg/internal/router"
)

// BasePath 所有接口的前缀.
const BasePath = "/api/v1"

// RegisterGroup 将 /api/v1 路由组与 Swagger 路由注册到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine, h *handle.Handlers, cfg configs.ServerConfig) *gin.Engine {
	router.Register(e.Group(BasePath), h)
	router.RegisterSwaggerRoute(e, cfg)

	return e
}
