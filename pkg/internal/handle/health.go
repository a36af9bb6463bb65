package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/configs"
)

const timeout = 2 * time.Second

type healthStatus struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

func healthy(c *gin.Context, component string) {
	c.JSON(http.StatusOK, healthStatus{Component: component, Status: "ok"})
}

func unhealthy(c *gin.Context, component, reason string) {
	c.JSON(http.StatusServiceUnavailable, healthStatus{Component: component, Status: "unhealthy", Error: reason})
}

// Health 存活检查.
//
//	@Summary		存活检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	object	"服务版本"
//	@Router			/api/v1/health [get]
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": configs.AppVersion})
}

// HealthDB 数据库健康检查.
//
//	@Summary		数据库健康检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	object
//	@Failure		503	{object}	object
//	@Router			/api/v1/health/db [get]
func (h *Handlers) HealthDB(c *gin.Context) {
	if h.Storage == nil || h.Storage.DB == nil || h.Storage.DB.DB == nil {
		unhealthy(c, "db", "db client not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	sqlDB, err := h.Storage.DB.DB.DB()
	if err != nil {
		unhealthy(c, "db", err.Error())
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		unhealthy(c, "db", err.Error())
		return
	}

	healthy(c, "db")
}

// HealthS3 对象存储健康检查.
//
//	@Summary		对象存储健康检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	object
//	@Failure		503	{object}	object
//	@Router			/api/v1/health/s3 [get]
func (h *Handlers) HealthS3(c *gin.Context) {
	if h.Storage == nil || h.Storage.S3 == nil {
		unhealthy(c, "s3", "s3 client not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := h.Storage.S3.HealthCheck(ctx); err != nil {
		unhealthy(c, "s3", err.Error())
		return
	}

	healthy(c, "s3")
}

// HealthMQ 消息队列健康检查.
//
//	@Summary		消息队列健康检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	object
//	@Failure		503	{object}	object
//	@Router			/api/v1/health/mq [get]
func (h *Handlers) HealthMQ(c *gin.Context) {
	if h.Storage == nil || h.Storage.MQ == nil {
		unhealthy(c, "mq", "mq client not initialized")
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": "mq", "status": "ok", "type": h.Storage.MQ.Type()})
}
