package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithService(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithService("graphql-lambda", "debug")
	l.SetOutput(&buf)

	l.WithField("k", "v").Debug("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "graphql-lambda", entry["service"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "hello", entry["msg"])
	assert.NotContains(t, entry, "time")
}

func TestNewLoggerLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, NewLogger("warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("bogus").GetLevel())
}
