// Package client 是展示端访问门面服务的 HTTP 客户端.
//
// Client 实现 facade.API，远端错误还原为携带类别的 *Error，
// facade.KindOf 与 errors.Is(err, facade.ErrNotFound) 均可直接使用.
//
//	c := client.New("http://127.0.0.1:17890", client.WithToken(token))
//	files, err := c.ProjectFiles(ctx)
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/types"
)

const (
	apiPrefix = "/api/v1"

	// DefaultTimeout 单次调用默认超时.
	DefaultTimeout = 15 * time.Second

	maxErrorBody = 64 << 10
)

var _ facade.API = (*Client)(nil)

// Error 远端返回的错误.
type Error struct {
	Status  int
	Kind    facade.Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

// ErrorKind 返回错误类别.
func (e *Error) ErrorKind() facade.Kind { return e.Kind }

// Is 使 errors.Is 能匹配门面的哨兵错误.
func (e *Error) Is(target error) bool {
	switch target {
	case facade.ErrNotFound:
		return e.Kind == facade.KindNotFound
	case facade.ErrInvalidRequest:
		return e.Kind == facade.KindInvalidRequest
	case facade.ErrClosed:
		return e.Kind == facade.KindUnavailable
	case context.DeadlineExceeded:
		return e.Kind == facade.KindTimeout
	default:
		return false
	}
}

// Client 门面 HTTP 客户端，可并发使用.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
}

// Option 配置 Client.
type Option func(*Client)

// WithToken 设置 Bearer 令牌.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout 设置单次调用超时，<= 0 表示只受 ctx 约束.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient 替换底层 http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New 创建客户端，baseURL 形如 http://127.0.0.1:17890.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		http:    &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewFromConfig 按 client 配置段创建客户端.
func NewFromConfig(cfg configs.ClientConfig) *Client {
	return New(cfg.BaseURL, WithToken(cfg.Token), WithTimeout(cfg.Timeout))
}

// ReadDir 列出目录条目名称.
func (c *Client) ReadDir(ctx context.Context, path string) ([]string, error) {
	var resp types.ReadDirResponse
	err := c.ipc(ctx, types.ReadDir, types.PathRequest{Path: path}, &resp)

	return resp.Entries, err
}

// IsDirectory 判断路径是否为目录.
func (c *Client) IsDirectory(ctx context.Context, path string) (bool, error) {
	var resp types.IsDirectoryResponse
	err := c.ipc(ctx, types.IsDirectory, types.PathRequest{Path: path}, &resp)

	return resp.IsDirectory, err
}

// Stat 获取时间戳与扩展名.
func (c *Client) Stat(ctx context.Context, path string) (types.StatResult, error) {
	var resp types.StatResult
	err := c.ipc(ctx, types.Stat, types.PathRequest{Path: path}, &resp)

	return resp, err
}

// UpsertFileDetails 写入或整行替换记录.
func (c *Client) UpsertFileDetails(ctx context.Context, details types.FileDetails) error {
	return c.ipc(ctx, types.UpsertFileDetails, details, &types.AckResponse{})
}

// DeleteFile 硬删除记录，不存在时无操作.
func (c *Client) DeleteFile(ctx context.Context, path string) error {
	return c.ipc(ctx, types.DeleteFile, types.PathRequest{Path: path}, &types.AckResponse{})
}

// GetAllFiles 返回全部活跃记录.
func (c *Client) GetAllFiles(ctx context.Context) ([]types.FileDetails, error) {
	var resp types.FilesResponse
	err := c.ipc(ctx, types.GetAllFiles, nil, &resp)

	return resp.Files, err
}

// GetFileDetails 按路径获取记录.
func (c *Client) GetFileDetails(ctx context.Context, path string) (types.FileDetails, error) {
	var resp types.FileDetails
	err := c.ipc(ctx, types.GetFileDetails, types.PathRequest{Path: path}, &resp)

	return resp, err
}

// ReadFile 按展示文件名读取内容.
func (c *Client) ReadFile(ctx context.Context, filename string) (types.ReadFileResponse, error) {
	var resp types.ReadFileResponse
	err := c.ipc(ctx, types.ReadFile, types.ReadFileRequest{Filename: filename}, &resp)

	return resp, err
}

// GetAppVersion 返回服务端版本.
func (c *Client) GetAppVersion(ctx context.Context) (types.AppVersionResponse, error) {
	var resp types.AppVersionResponse
	err := c.ipc(ctx, types.GetAppVersion, nil, &resp)

	return resp, err
}

// GetSettings 读取模型设置.
func (c *Client) GetSettings(ctx context.Context) (types.Settings, error) {
	var resp types.Settings
	err := c.do(ctx, http.MethodGet, apiPrefix+"/settings", nil, &resp)

	return resp, err
}

// UpdateSettings 部分更新模型设置.
func (c *Client) UpdateSettings(ctx context.Context, req types.UpdateSettingsRequest) (types.Settings, error) {
	var resp types.Settings
	err := c.do(ctx, http.MethodPut, apiPrefix+"/settings", req, &resp)

	return resp, err
}

func (c *Client) ipc(ctx context.Context, name types.RequestName, req, resp any) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/ipc/"+string(name), req, resp)
}

// do 发送请求并解码响应，ctx 与单次超时取先到者.
func (c *Client) do(ctx context.Context, method, path string, req, resp any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader

	if req != nil {
		raw, err := sonic.Marshal(req)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		body = bytes.NewReader(raw)
	}

	httpReq, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return transportError(ctx, err)
	}

	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusBadRequest {
		return decodeError(httpResp)
	}

	if resp == nil {
		return nil
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return transportError(ctx, err)
	}

	if err := sonic.Unmarshal(raw, resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}

// transportError 超时保留 context 错误，连接失败归类为 unavailable.
func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("request aborted: %w", ctxErr)
	}

	return &Error{Kind: facade.KindUnavailable, Message: err.Error()}
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body types.ErrorResponse
	if err := sonic.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return &Error{Status: resp.StatusCode, Kind: kindFromStatus(resp.StatusCode), Message: strings.TrimSpace(string(raw))}
	}

	return &Error{Status: resp.StatusCode, Kind: facade.Kind(body.Error), Message: body.Message}
}

func kindFromStatus(status int) facade.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusTooManyRequests:
		return facade.KindInvalidRequest
	case http.StatusNotFound:
		return facade.KindNotFound
	case http.StatusUnprocessableEntity:
		return facade.KindIOError
	case http.StatusGatewayTimeout:
		return facade.KindTimeout
	case http.StatusServiceUnavailable:
		return facade.KindUnavailable
	default:
		return facade.KindInternal
	}
}

// IsNotFound 判断错误是否为记录不存在.
func IsNotFound(err error) bool {
	return errors.Is(err, facade.ErrNotFound)
}
