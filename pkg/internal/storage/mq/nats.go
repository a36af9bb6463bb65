//go:build !no_nats

package mq

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/oxygen/pkg/configs"
)

const (
	DefaultDrainTimeout   = 30 * time.Second
	DefaultFlusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// buildNatsOptions 构建 NATS 连接选项.
func buildNatsOptions(cfg *configs.MQCommonConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.ClientID),
		nc.MaxReconnects(cfg.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(cfg.PingInterval) * time.Second),
		nc.MaxPingsOutstanding(cfg.MaxPingsOut),
		nc.DrainTimeout(DefaultDrainTimeout),
		nc.FlusherTimeout(DefaultFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	if !cfg.ReconnectJitter {
		opts = append(opts, nc.ReconnectJitter(0, 0))
	}

	if cfg.User != "" {
		opts = append(opts, nc.UserInfo(cfg.User, cfg.Password))
	}

	return opts
}

// buildJetStreamConfig 构建 JetStream 配置.
func buildJetStreamConfig(cfg *configs.MQNATSConfig, logger watermill.LoggerAdapter) nats.JetStreamConfig {
	if !cfg.JetStreamEnabled {
		return nats.JetStreamConfig{Disabled: true}
	}

	logger.Info("jetstream enabled", watermill.LogFields{
		"auto_provision": cfg.JetStreamAutoProvision,
		"track_msg_id":   cfg.JetStreamTrackMsgID,
		"durable_prefix": cfg.JetStreamDurablePrefix,
	})

	return nats.JetStreamConfig{
		AutoProvision: cfg.JetStreamAutoProvision,
		TrackMsgId:    cfg.JetStreamTrackMsgID,
		AckAsync:      cfg.JetStreamAckAsync,
		DurablePrefix: cfg.JetStreamDurablePrefix,
	}
}

// subjectCalculator 为主题加上配置的前缀.
func subjectCalculator(prefix string) nats.SubjectCalculator {
	return func(queueGroupPrefix, topic string) *nats.SubjectDetail {
		detail := nats.DefaultSubjectCalculator(queueGroupPrefix, prefix+topic)
		return detail
	}
}

// natsFactory 创建 NATS Publisher & Subscriber.
func natsFactory(_ context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	opts := buildNatsOptions(&cfg.Common)
	jsCfg := buildJetStreamConfig(&cfg.NATS, logger)
	marshaler := &nats.JSONMarshaler{}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:               cfg.Common.URL,
		NatsOptions:       opts,
		Marshaler:         marshaler,
		SubjectCalculator: subjectCalculator(cfg.NATS.SubjectPrefix),
		JetStream:         jsCfg,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:               cfg.Common.URL,
		NatsOptions:       opts,
		Unmarshaler:       marshaler,
		SubjectCalculator: subjectCalculator(cfg.NATS.SubjectPrefix),
		AckWaitTimeout:    time.Duration(cfg.NATS.ConsumerAckWait) * time.Second,
		JetStream:         jsCfg,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, err
	}

	return pub, sub, nil
}
