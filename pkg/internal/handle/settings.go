package handle

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/service"
	"github.com/yeisme/oxygen/pkg/internal/types"
)

// GetSettings 获取语言模型设置.
//
//	@Summary		获取设置
//	@Tags			设置
//	@Produce		json
//	@Success		200	{object}	types.Settings		"当前设置，未保存过时为默认值"
//	@Failure		500	{object}	types.ErrorResponse	"存储错误"
//	@Router			/api/v1/settings [get]
func (h *Handlers) GetSettings(c *gin.Context) {
	if h.Settings == nil {
		writeError(c, unavailable("settings"))
		return
	}

	settings, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings 部分更新语言模型设置.
//
//	@Summary		更新设置
//	@Tags			设置
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.UpdateSettingsRequest	true	"仅更新非空字段"
//	@Success		200		{object}	types.Settings				"更新后的设置"
//	@Failure		400		{object}	types.ErrorResponse			"请求参数错误"
//	@Failure		500		{object}	types.ErrorResponse			"存储错误"
//	@Router			/api/v1/settings [put]
func (h *Handlers) UpdateSettings(c *gin.Context) {
	if h.Settings == nil {
		writeError(c, unavailable("settings"))
		return
	}

	var req types.UpdateSettingsRequest
	if err := bind(c, &req); err != nil {
		writeError(c, err)
		return
	}

	settings, err := h.Settings.Update(c.Request.Context(), req)
	if errors.Is(err, service.ErrInvalidSettings) {
		err = fmt.Errorf("%w: %w", facade.ErrInvalidRequest, err)
	}

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
