package handle

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeisme/oxygen/pkg/internal/facade"
)

// SchedulerJobs 返回所有调度器任务信息.
//
//	@Summary		定时任务列表
//	@Tags			定时任务
//	@Produce		json
//	@Success		200	{object}	object
//	@Router			/api/v1/scheduler/jobs [get]
func (h *Handlers) SchedulerJobs(c *gin.Context) {
	if h.Scheduler == nil {
		writeError(c, unavailable("scheduler"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": h.Scheduler.GetJobInfos()})
}

// SchedulerRunJob 立即执行指定名称的任务.
//
//	@Summary		立即执行定时任务
//	@Tags			定时任务
//	@Produce		json
//	@Param			name	path		string	true	"任务名称"
//	@Success		202		{object}	object
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/api/v1/scheduler/jobs/{name}/run [post]
func (h *Handlers) SchedulerRunJob(c *gin.Context) {
	if h.Scheduler == nil {
		writeError(c, unavailable("scheduler"))
		return
	}

	name := c.Param("name")
	if _, err := h.Scheduler.GetJobInfoByName(name); err != nil {
		writeError(c, fmt.Errorf("%w: %w", facade.ErrNotFound, err))
		return
	}

	if err := h.Scheduler.RunNow(name); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "job triggered", "name": name})
}

// SchedulerRemoveJob 根据 id 删除任务.
//
//	@Summary		删除定时任务
//	@Tags			定时任务
//	@Produce		json
//	@Param			id	path		string	true	"任务 ID"
//	@Success		200	{object}	object
//	@Failure		400	{object}	types.ErrorResponse
//	@Router			/api/v1/scheduler/jobs/{id} [delete]
func (h *Handlers) SchedulerRemoveJob(c *gin.Context) {
	if h.Scheduler == nil {
		writeError(c, unavailable("scheduler"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid job id", facade.ErrInvalidRequest))
		return
	}

	if err := h.Scheduler.RemoveJob(id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job removed"})
}

// SchedulerQueueWaiting 返回队列中等待的任务数.
//
//	@Summary		等待中的任务数
//	@Tags			定时任务
//	@Produce		json
//	@Success		200	{object}	object
//	@Router			/api/v1/scheduler/queue [get]
func (h *Handlers) SchedulerQueueWaiting(c *gin.Context) {
	if h.Scheduler == nil {
		writeError(c, unavailable("scheduler"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"waiting": h.Scheduler.JobsWaitingInQueue()})
}
