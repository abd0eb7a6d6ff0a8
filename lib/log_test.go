package lib

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		" warn ":  WarningLevel,
		"warning": WarningLevel,
		"error":   ErrorLevel,
	} {
		level, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, level, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestZap(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewZap(WarningLevel, buf)

	logger.Info("dropped")
	logger.Debugf("dropped %d", 1)
	logger.With("connection", "c1").Warnf("packet %d", 7)
	logger.Error("failed")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "packet 7", entry["msg"])
	assert.Equal(t, "c1", entry["connection"])
	assert.Contains(t, entry["caller"], "log_test.go")

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "error", entry["level"])
}

func TestConsoleZap(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewConsoleZap(DebugLevel, buf)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger.With("a", 1)
	logger.Errorf("nothing %d", 1)
	assert.Equal(t, DiscardLogger, logger)
}

func TestLog(t *testing.T) {
	buf := new(bytes.Buffer)
	SetTraceLogger(NewZap(DebugLevel, buf))
	defer SetTraceLogger(nil)

	Log("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetTrace(true)
	defer SetTrace(false)
	Log("CONTROL %s", "SEND")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "CONTROL SEND", entry["msg"])
	assert.Contains(t, entry["caller"], "log_test.go")
}
