package handle

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/types"
)

// ipcCall 执行一个具名请求，body 按请求类型自行绑定.
type ipcCall func(ctx context.Context, api facade.API, c *gin.Context) (any, error)

var ipcCalls = map[types.RequestName]ipcCall{
	types.ReadDir: withPath(func(ctx context.Context, api facade.API, path string) (any, error) {
		entries, err := api.ReadDir(ctx, path)
		return types.ReadDirResponse{Entries: entries}, err
	}),
	types.IsDirectory: withPath(func(ctx context.Context, api facade.API, path string) (any, error) {
		isDir, err := api.IsDirectory(ctx, path)
		return types.IsDirectoryResponse{IsDirectory: isDir}, err
	}),
	types.Stat: withPath(func(ctx context.Context, api facade.API, path string) (any, error) {
		return api.Stat(ctx, path)
	}),
	types.DeleteFile: withPath(func(ctx context.Context, api facade.API, path string) (any, error) {
		return types.AckResponse{OK: true}, api.DeleteFile(ctx, path)
	}),
	types.GetFileDetails: withPath(func(ctx context.Context, api facade.API, path string) (any, error) {
		return api.GetFileDetails(ctx, path)
	}),
	types.UpsertFileDetails: func(ctx context.Context, api facade.API, c *gin.Context) (any, error) {
		var req types.FileDetails
		if err := bind(c, &req); err != nil {
			return nil, err
		}

		return types.AckResponse{OK: true}, api.UpsertFileDetails(ctx, req)
	},
	types.GetAllFiles: func(ctx context.Context, api facade.API, _ *gin.Context) (any, error) {
		files, err := api.GetAllFiles(ctx)
		return types.FilesResponse{Files: files}, err
	},
	types.ReadFile: func(ctx context.Context, api facade.API, c *gin.Context) (any, error) {
		var req types.ReadFileRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}

		return api.ReadFile(ctx, req.Filename)
	},
	types.GetAppVersion: func(ctx context.Context, api facade.API, _ *gin.Context) (any, error) {
		return api.GetAppVersion(ctx)
	},
}

func withPath(fn func(ctx context.Context, api facade.API, path string) (any, error)) ipcCall {
	return func(ctx context.Context, api facade.API, c *gin.Context) (any, error) {
		var req types.PathRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}

		return fn(ctx, api, req.Path)
	}
}

// bind 解析 JSON 请求体，失败归类为 invalid_request.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", facade.ErrInvalidRequest, err)
	}

	return nil
}

// IPC 执行具名门面请求.
//
//	@Summary		门面请求
//	@Description	按名称执行门面请求：read-dir、is-directory、stat、upsert-file-details、delete-file、get-all-files、get-file-details、read-file、get-app-version
//	@Tags			门面
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string				true	"请求名称"
//	@Param			body	body		object				false	"请求体，按请求类型而定"
//	@Success		200		{object}	object				"请求结果"
//	@Failure		400		{object}	types.ErrorResponse	"请求参数错误"
//	@Failure		404		{object}	types.ErrorResponse	"记录不存在"
//	@Failure		422		{object}	types.ErrorResponse	"文件系统错误"
//	@Failure		500		{object}	types.ErrorResponse	"存储错误"
//	@Failure		503		{object}	types.ErrorResponse	"服务关闭中"
//	@Failure		504		{object}	types.ErrorResponse	"调用超时"
//	@Router			/api/v1/ipc/{name} [post]
func (h *Handlers) IPC(c *gin.Context) {
	name := types.RequestName(c.Param("name"))

	call, ok := ipcCalls[name]
	if !ok {
		writeError(c, fmt.Errorf("%w: unknown request %q", facade.ErrInvalidRequest, name))
		return
	}

	res, err := call(c.Request.Context(), h.API, c)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// IPCRequests 列出支持的请求集合与版本.
//
//	@Summary		门面请求集合
//	@Tags			门面
//	@Produce		json
//	@Success		200	{object}	object	"apiVersion 与 requests"
//	@Router			/api/v1/ipc [get]
func (h *Handlers) IPCRequests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"apiVersion": types.APIVersion, "requests": types.RequestNames})
}
