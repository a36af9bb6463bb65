// Package context 拓展上下文功能，将请求 ID、追踪信息与日志集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	nlog "github.com/yeisme/oxygen/pkg/log"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "requestID"
)

// WithRequestID 将请求 ID 存储到 context 中.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID 从 context 中获取请求 ID，不存在时为空串.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}

	return ""
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}

// Enrich 为 logger 附加 ctx 中的请求 ID 与追踪信息.
func Enrich(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if id := RequestID(ctx); id != "" {
		logger = logger.With().Str("request_id", id).Logger()
	}

	return WithTraceContext(ctx, logger)
}

// Logger 返回附带请求 ID 与追踪信息的全局 logger.
func Logger(ctx context.Context) zerolog.Logger {
	return Enrich(ctx, *nlog.Logger())
}
