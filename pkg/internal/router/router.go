// Package router 管理路由配置，将处理器绑定到 /api/v1 路由组.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/internal/handle"
)

// Register 在 g（通常为 /api/v1）下注册全部路由.
func Register(g *gin.RouterGroup, h *handle.Handlers) {
	RegisterIPCRoutes(g, h)
	RegisterSettingsRoutes(g, h)
	RegisterEventsRoute(g, h)
	RegisterSnapshotRoutes(g, h)
	RegisterHealthCheckRoute(g, h)
	RegisterSchedulerRoutes(g, h)
}

// RegisterIPCRoutes 注册门面请求路由.
//
//	GET  /ipc        -> 请求集合与版本
//	POST /ipc/:name  -> 执行具名请求
func RegisterIPCRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	ipc := g.Group("/ipc")
	{
		ipc.GET("", h.IPCRequests)
		ipc.POST("/:name", h.IPC)
	}
}

// RegisterSettingsRoutes 注册设置路由.
func RegisterSettingsRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
}

// RegisterEventsRoute 注册变更通知 SSE 路由.
func RegisterEventsRoute(g *gin.RouterGroup, h *handle.Handlers) {
	g.GET("/events", h.Events)
}

// RegisterSnapshotRoutes 注册快照与巡检路由.
func RegisterSnapshotRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	snapshots := g.Group("/snapshots")
	{
		snapshots.GET("/export", h.ExportSnapshot)
		snapshots.POST("", h.UploadSnapshot)
	}

	g.POST("/audit", h.RunAudit)
}
