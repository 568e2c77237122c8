package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Splonchpad/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, config.LoggingConfig{Level: "info", Format: "json"})
	l.Debug("hidden")
	l.Info("stroke committed", "points", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "stroke committed", rec["msg"])
	assert.Equal(t, float64(3), rec["points"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, config.LoggingConfig{Level: "debug", Format: "text"})
	l.Debug("armed", "glyph", "star")
	assert.Contains(t, buf.String(), "glyph=star")
}

func TestSetLevelAdjustsSharedLoggers(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	var buf bytes.Buffer
	l := newLogger(&buf, "text", &level)
	SetLevel("error")
	l.Warn("quiet")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	l.Debug("loud")
	assert.Contains(t, buf.String(), "loud")
}
