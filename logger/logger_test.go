package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/annreg/config"
)

func TestFromConfig_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := FromConfig(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	l.LogBuild(context.Background(), "docs", 3, nil)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "build completed", record["msg"])
	assert.Equal(t, "docs", record["index"])
	assert.Equal(t, float64(3), record["built"])
}

func TestFromConfig_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := FromConfig(config.LogConfig{Level: "info"}, &buf)
	l.LogBuild(context.Background(), "docs", 3, nil)
	assert.Empty(t, buf.String())

	l.LogSave(context.Background(), "docs", "a.index", "a.elements", errors.New("disk full"))
	assert.Contains(t, buf.String(), "save failed")
	assert.Contains(t, buf.String(), "disk full")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.LogFault(context.Background(), "build", "docs", "boom")
}

func TestWithIndex(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, slog.LevelDebug)

	l.WithIndex("docs").InfoContext(context.Background(), "tagged")
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "docs", record["index"])

	assert.Same(t, l, l.WithIndex(""))
	buf.Reset()
	l.LogFault(context.Background(), "configure", "", "boom")
	record = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "index")
	assert.Equal(t, "configure", record["op"])
}
