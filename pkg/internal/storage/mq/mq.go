// Package mq 提供基于 Watermill 库的统一消息队列操作接口。
// 支持发布/订阅模式，并通过工厂模式抽象不同的 MQ 实现。
//
// 支持的 MQ 类型：
//   - memory（进程内 gochannel，默认）
//   - NATS（支持 JetStream）
//   - Redis（Pub/Sub）
//
// 使用示例：
//
//	client, err := mq.New(ctx, &cfg.MQ, mq.Options{})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	ch, _ := client.Subscribe(ctx, queue.TopicFileUpserted)
//	_ = client.Publish(ctx, queue.TopicFileUpserted, msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/oxygen/pkg/configs"
	nlog "github.com/yeisme/oxygen/pkg/log"
)

// ErrClosed 客户端已关闭.
var ErrClosed = errors.New("mq client closed")

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[configs.MQType]Factory{}
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[t] = f
}

// GetRegisteredTypes 返回已注册的 MQ 类型.
func GetRegisteredTypes() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	out := make([]string, 0, len(factories))
	for t := range factories {
		out = append(out, string(t))
	}

	sort.Strings(out)

	return out
}

// Options 创建客户端的可选项.
type Options struct {
	// Registerer 非空时为 publisher/subscriber 装饰 Prometheus 指标.
	Registerer prometheus.Registerer
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	typ        configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber

	mu     sync.RWMutex
	closed bool
}

// New 按配置创建消息队列客户端.
func New(ctx context.Context, cfg *configs.MQConfig, opts Options) (*Client, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := newWatermillLogger(*nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if opts.Registerer != nil {
		builder := metrics.NewPrometheusMetricsBuilder(opts.Registerer, "oxygen", "mq")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("mq client initialized")

	return &Client{typ: cfg.Type, publisher: pub, subscriber: sub}, nil
}

// Type 返回底层 MQ 类型.
func (c *Client) Type() configs.MQType {
	return c.typ
}

// Publisher 返回底层 watermill Publisher，供 queue 包的事件发布函数使用.
func (c *Client) Publisher() message.Publisher {
	return closedGuard{c}
}

// closedGuard 在客户端关闭后拒绝发布.
type closedGuard struct{ c *Client }

func (g closedGuard) Publish(topic string, msgs ...*message.Message) error {
	return g.c.Publish(context.Background(), topic, msgs...)
}

func (g closedGuard) Close() error { return nil }

// Publish 便捷发布.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClosed
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 便捷订阅，ctx 结束时通道关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭资源，可重复调用.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	var errs []error

	if err := c.publisher.Close(); err != nil {
		errs = append(errs, err)
	}

	// gochannel 的 publisher 与 subscriber 是同一个实例
	if any(c.subscriber) != any(c.publisher) {
		if err := c.subscriber.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
