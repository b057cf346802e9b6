package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagerag/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("stage", "index").Debug("built")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "built", line["msg"])
	assert.Equal(t, "index", line["stage"])
}

func TestNewWithWriter_BadLevel(t *testing.T) {
	log := NewWithWriter(config.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
