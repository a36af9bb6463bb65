package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/queue"
)

func TestNewWatermillMessageMetadata(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicFileUpserted,
		queue.FilePayload{Path: "/p/a.md", Filename: "a.md"},
		queue.WithTraceID("trace-1"), queue.WithProducer("oxygen"))
	require.NoError(t, err)

	assert.Equal(t, queue.TopicFileUpserted, msg.Metadata.Get("topic"))
	assert.Equal(t, "trace-1", msg.Metadata.Get("trace_id"))
	assert.Equal(t, "oxygen", msg.Metadata.Get("producer"))
	assert.Equal(t, queue.PayloadVersionV1, msg.Metadata.Get("version"))

	env, err := queue.ParseFileEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, "/p/a.md", env.Payload.Path)
	assert.Equal(t, "a.md", env.Payload.Filename)
	assert.Equal(t, queue.TopicFileUpserted, env.Header.Topic)
	assert.WithinDuration(t, time.Now(), env.Header.OccurredAt, time.Minute)
}

func TestParseFileEventRejectsGarbage(t *testing.T) {
	msg, err := queue.NewWatermillMessage(queue.TopicFileDeleted, "x")
	require.NoError(t, err)

	msg.Payload = []byte("{not json")

	_, err = queue.ParseFileEvent(msg)
	require.Error(t, err)
}

func TestPublishFileDeleted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NopLogger{})
	defer ch.Close()

	msgs, err := ch.Subscribe(ctx, queue.TopicFileDeleted)
	require.NoError(t, err)

	require.NoError(t, queue.PublishFileDeleted(ch, "/p/gone.md"))

	select {
	case m := <-msgs:
		env, err := queue.ParseFileEvent(m)
		require.NoError(t, err)
		assert.Equal(t, "/p/gone.md", env.Payload.Path)
		m.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}
