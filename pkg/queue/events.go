package queue

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// 主题命名规范：ox.<域>.<动作>，尽量稳定且向后兼容.
const (
	TopicFileUpserted = "ox.file.upserted" // 项目文件记录写入或整行替换
	TopicFileDeleted  = "ox.file.deleted"  // 项目文件记录被硬删除
)

// FileTopics 所有文件事件主题.
var FileTopics = []string{TopicFileUpserted, TopicFileDeleted}

// EventHeader 定义所有事件的通用头部元数据.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// FilePayload 文件元数据变更负载，删除事件只带路径.
type FilePayload struct {
	Path        string `json:"path"`
	Filename    string `json:"filename,omitempty"`
	IsDirectory *bool  `json:"is_directory,omitempty"`
	IsActive    bool   `json:"is_active,omitempty"`
}

// PublishFileUpserted 发布 ox.file.upserted 事件.
func PublishFileUpserted(pub message.Publisher, payload FilePayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileUpserted, payload, opts...)
}

// PublishFileDeleted 发布 ox.file.deleted 事件.
func PublishFileDeleted(pub message.Publisher, path string, opts ...func(*EventHeader)) error {
	return publish(pub, TopicFileDeleted, FilePayload{Path: path}, opts...)
}

// ParseFileEvent 将 Watermill 消息解析为文件事件.
func ParseFileEvent(msg *message.Message) (Message[FilePayload], error) {
	env, err := ParseWatermillMessage[FilePayload](msg)
	if err != nil {
		return env, fmt.Errorf("parse file event: %w", err)
	}

	return env, nil
}

func publish[T any](pub message.Publisher, topic string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}
