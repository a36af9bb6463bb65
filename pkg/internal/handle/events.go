package handle

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"

	oxctx "github.com/yeisme/oxygen/pkg/context"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/queue"
)

// heartbeatInterval SSE 心跳间隔，防止中间代理断开空闲连接.
var heartbeatInterval = 15 * time.Second

// Events 以 server-sent events 推送项目文件变更通知.
//
//	@Summary		文件变更通知
//	@Description	订阅 ox.file.upserted 与 ox.file.deleted，事件名为 file，数据为 FileEvent
//	@Tags			事件
//	@Produce		text/event-stream
//	@Success		200	{object}	types.FileEvent
//	@Failure		503	{object}	types.ErrorResponse	"消息队列未启用"
//	@Router			/api/v1/events [get]
func (h *Handlers) Events(c *gin.Context) {
	if h.Storage == nil || h.Storage.MQ == nil {
		writeError(c, unavailable("events"))
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan types.FileEvent)

	var wg sync.WaitGroup

	for _, topic := range queue.FileTopics {
		msgs, err := h.Storage.MQ.Subscribe(ctx, topic)
		if err != nil {
			cancel()
			wg.Wait()
			writeError(c, err)

			return
		}

		wg.Add(1)

		go func() {
			defer wg.Done()
			forwardFileEvents(ctx, msgs, events)
		}()
	}

	defer wg.Wait()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Content-Type", "text/event-stream")

	// 订阅就绪后立即发送响应头，客户端据此得知后续变更不会丢失
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-events:
			c.SSEvent("file", ev)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.UTC().Format(time.RFC3339))
			return true
		}
	})

	cancel()
}

// forwardFileEvents 解析并确认消息后转发，无法解析的消息确认后丢弃.
func forwardFileEvents(ctx context.Context, msgs <-chan *message.Message, out chan<- types.FileEvent) {
	logger := oxctx.Logger(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			env, err := queue.ParseFileEvent(msg)
			msg.Ack()

			if err != nil {
				logger.Warn().Err(err).Str("uuid", msg.UUID).Msg("drop malformed file event")
				continue
			}

			ev := types.FileEvent{
				Type:       strings.TrimPrefix(env.Header.Topic, "ox.file."),
				Path:       env.Payload.Path,
				Filename:   env.Payload.Filename,
				OccurredAt: env.Header.OccurredAt,
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
