package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup, h *handle.Handlers) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("", h.Health)
		healthRoutes.GET("/db", h.HealthDB)
		healthRoutes.GET("/s3", h.HealthS3)
		healthRoutes.GET("/mq", h.HealthMQ)
	}
}
