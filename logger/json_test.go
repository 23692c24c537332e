package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerEmitsEntry(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, LevelDebug).(*jsonLogger)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return ts }

	l.Info("booked slot %s", "june-5-14h")

	var entry JSONLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Severity)
	assert.Equal(t, "booked slot june-5-14h", entry.Message)
	assert.Equal(t, ts, entry.Timestamp)
}

func TestJSONLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, LevelWarn)
	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("visible")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestJSONLoggerComponentAndMetadata(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, LevelDebug)
	l = l.WithPrefix("session").With(map[string]interface{}{"role": "admin"})
	l.Info("restored")

	var entry JSONLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "session", entry.Component)
	assert.Equal(t, "admin", entry.Metadata["role"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelNone, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestTestLoggerSharesEntriesAcrossDerived(t *testing.T) {
	l := NewTestLogger()
	derived := l.WithPrefix("gate").With(map[string]interface{}{"k": "v"})
	derived.Error("check failed: %s", "timeout")
	require.Len(t, l.Entries(), 1)
	assert.Equal(t, "ERROR", l.Entries()[0].Severity)
	assert.True(t, l.Contains("check failed"))
}
