package handle

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/internal/service"
)

// ExportSnapshot 以 JSON 下载当前活跃记录的快照.
//
//	@Summary		导出快照
//	@Tags			快照
//	@Produce		json
//	@Success		200	{object}	service.Snapshot
//	@Router			/api/v1/snapshots/export [get]
func (h *Handlers) ExportSnapshot(c *gin.Context) {
	if h.Snapshot == nil {
		writeError(c, unavailable("snapshot"))
		return
	}

	snap, err := h.Snapshot.Build(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, snap.ID))
	c.JSON(http.StatusOK, snap)
}

// UploadSnapshot 生成快照并上传到对象存储.
//
//	@Summary		上传快照
//	@Tags			快照
//	@Produce		json
//	@Success		201	{object}	object	"对象键"
//	@Failure		503	{object}	types.ErrorResponse	"对象存储未启用"
//	@Router			/api/v1/snapshots [post]
func (h *Handlers) UploadSnapshot(c *gin.Context) {
	if h.Snapshot == nil {
		writeError(c, unavailable("snapshot"))
		return
	}

	key, err := h.Snapshot.Upload(c.Request.Context())
	if errors.Is(err, service.ErrS3Disabled) {
		err = unavailableError{msg: err.Error()}
	}

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key})
}

// RunAudit 执行一次只读巡检.
//
//	@Summary		巡检已跟踪路径
//	@Tags			快照
//	@Produce		json
//	@Success		200	{object}	service.AuditReport
//	@Router			/api/v1/audit [post]
func (h *Handlers) RunAudit(c *gin.Context) {
	if h.Audit == nil {
		writeError(c, unavailable("audit"))
		return
	}

	report, err := h.Audit.Run(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
