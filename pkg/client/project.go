package client

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/mention"
	"github.com/yeisme/oxygen/pkg/internal/types"
)

// CodeFile 随消息附带的文件内容.
type CodeFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// AddDroppedPath 将拖入的宿主路径加入项目，任一步失败都不会写入.
func (c *Client) AddDroppedPath(ctx context.Context, path string) (types.FileDetails, error) {
	return facade.AddPath(ctx, c, path)
}

// ProjectFiles 返回活跃的非目录记录，按文件名排序.
func (c *Client) ProjectFiles(ctx context.Context) ([]types.FileDetails, error) {
	all, err := c.GetAllFiles(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]types.FileDetails, 0, len(all))

	for _, f := range all {
		if f.IsDirectory != nil && *f.IsDirectory {
			continue
		}

		files = append(files, f)
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })

	return files, nil
}

// Suggest 按输入末尾的 @partial 返回补全候选.
func (c *Client) Suggest(ctx context.Context, text string) ([]string, error) {
	if _, ok := mention.Partial(text); !ok {
		return nil, nil
	}

	files, err := c.ProjectFiles(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}

	return mention.Suggest(text, names, mention.DefaultSuggestLimit), nil
}

// CompleteMention 用选中的文件名替换输入末尾的 @partial.
func (c *Client) CompleteMention(text, filename string) string {
	return mention.Complete(text, filename)
}

// ResolveMentions 并发读取消息中 @ 提及的文件，结果与提及顺序一致；任一读取失败即整体失败.
func (c *Client) ResolveMentions(ctx context.Context, text string) ([]CodeFile, error) {
	names := mention.Parse(text)
	files := make([]CodeFile, len(names))

	g, gctx := errgroup.WithContext(ctx)

	for i, name := range names {
		g.Go(func() error {
			resp, err := c.ReadFile(gctx, name)
			if err != nil {
				return fmt.Errorf("read @%s: %w", name, err)
			}

			files[i] = CodeFile{Filename: name, Content: resp.Content}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

// Events 订阅变更通知，ctx 结束或连接断开时关闭返回的 channel.
// 只受 ctx 约束，不应用单次调用超时.
func (c *Client) Events(ctx context.Context) (<-chan types.FileEvent, error) {
	req, err := c.newRequest(ctx, http.MethodGet, apiPrefix+"/events", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()

		return nil, decodeError(resp)
	}

	out := make(chan types.FileEvent)

	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		event := ""

		for scanner.Scan() {
			line := scanner.Text()

			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:") && event == "file":
				var ev types.FileEvent
				if err := sonic.UnmarshalString(strings.TrimPrefix(line, "data:"), &ev); err != nil {
					continue
				}

				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case line == "":
				event = ""
			}
		}
	}()

	return out, nil
}
