package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册调度器相关路由.
func RegisterSchedulerRoutes(g *gin.RouterGroup, h *handle.Handlers) {
	sched := g.Group("/scheduler")
	{
		sched.GET("/jobs", h.SchedulerJobs)
		sched.POST("/jobs/:name/run", h.SchedulerRunJob)
		sched.DELETE("/jobs/:id", h.SchedulerRemoveJob)
		sched.GET("/queue", h.SchedulerQueueWaiting)
	}
}
