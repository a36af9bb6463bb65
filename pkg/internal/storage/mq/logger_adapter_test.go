package mq

import (
	"bytes"
	"errors"
	"testing"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer

	l := newWatermillLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	l = l.With(watermill.LogFields{"topic": "ox.file.upserted"})

	l.Error("publish failed", errors.New("boom"), watermill.LogFields{"attempt": 2})
	l.Info("subscribed", nil)
	l.Debug("dropped at debug", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, sonic.Unmarshal(lines[0], &first))
	assert.Equal(t, "error", first["level"])
	assert.Equal(t, "boom", first["error"])
	assert.Equal(t, "mq", first["component"])
	assert.Equal(t, "ox.file.upserted", first["topic"])
	assert.EqualValues(t, 2, first["attempt"])

	var second map[string]any
	require.NoError(t, sonic.Unmarshal(lines[1], &second))
	assert.Equal(t, "debug", second["level"])
	assert.Equal(t, "subscribed", second["message"])
}
