package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerOptions{Level: "warn", Output: &buf})

	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLogger_VerboseOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerOptions{Level: "error", Output: &buf, Verbose: true})

	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("info"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}

func TestChildLoggers_AttachFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerOptions{Level: "info", Output: &buf})

	log.WithComponent("strategy").
		WithURL("http://example.com/").
		WithBackend("Rendering").
		Info().Msg("attempt")

	entry := logLine(t, &buf)
	assert.Equal(t, "strategy", entry["component"])
	assert.Equal(t, "http://example.com/", entry["url"])
	assert.Equal(t, "Rendering", entry["backend"])
}

func TestChildLoggers_DoNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerOptions{Level: "info", Output: &buf})
	_ = log.WithComponent("store")

	log.Info().Msg("plain")

	entry := logLine(t, &buf)
	_, hasComponent := entry["component"]
	assert.False(t, hasComponent)
}
