package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"debug", LogLevelDebug, true},
		{"INFO", LogLevelInfo, true},
		{"", LogLevelInfo, true},
		{"warning", LogLevelWarn, true},
		{"error", LogLevelError, true},
		{"verbose", LogLevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestHopsLogger_ScopedAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{
		Level:       LogLevelDebug,
		Format:      "json",
		Output:      &buf,
		CustomAttrs: map[string]any{"service": "hops"},
	})

	l.WithComponent("solve").WithInvocation("inv-1").Info("solve.start", "inputs", 2)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "solve.start", lines[0]["msg"])
	assert.Equal(t, "solve", lines[0]["component"])
	assert.Equal(t, "inv-1", lines[0]["invocation_id"])
	assert.Equal(t, "hops", lines[0]["service"])
	assert.EqualValues(t, 2, lines[0]["inputs"])
}

func TestHopsLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "json", Output: &buf})

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
}

func TestHopsLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})
	_ = parent.WithComponent("router").WithInvocation("inv-2")

	parent.Info("plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "component")
	assert.NotContains(t, lines[0], "invocation_id")
}

func TestHopsLogger_Slog(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	l.Slog().Info("direct", "k", "v")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "direct", lines[0]["msg"])
	assert.Equal(t, "v", lines[0]["k"])
}

func TestForComponentAndInvocation(t *testing.T) {
	t.Run("hops logger", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

		ForInvocation(ForComponent(l, "Add"), "inv-3").Info("solve.start")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "Add", lines[0]["component"])
		assert.Equal(t, "inv-3", lines[0]["invocation_id"])
	})

	t.Run("slog adapter", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))

		ForInvocation(ForComponent(l, "Add"), "inv-4").Warn("solve.panic", "k", "v")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "Add", lines[0]["component"])
		assert.Equal(t, "inv-4", lines[0]["invocation_id"])
		assert.Equal(t, "v", lines[0]["k"])
		assert.Equal(t, "WARN", lines[0]["level"])
	})

	t.Run("nil", func(t *testing.T) {
		assert.IsType(t, NoOpLogger{}, ForComponent(nil, "Add"))
		assert.IsType(t, NoOpLogger{}, ForInvocation(NoOpLogger{}, "inv-5"))
	})
}

func TestLogSolve(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	LogSolve(l, "/add/solve", 5*time.Millisecond, nil, "code", "success")
	LogSolve(l, "/add/solve", time.Millisecond, errors.New("boom"), "code", "handler_error")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "solve.completed", lines[0]["msg"])
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "/add/solve", lines[0]["uri"])
	assert.EqualValues(t, 5, lines[0]["duration_ms"])
	assert.Equal(t, "success", lines[0]["code"])
	assert.Equal(t, "solve.failed", lines[1]["msg"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "handler_error", lines[1]["code"])
}

func TestLogRequest(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	LogRequest(l, "POST", "/add", "solve", 200, 2*time.Millisecond)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "router.request", lines[0]["msg"])
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "/add", lines[0]["path"])
	assert.Equal(t, "solve", lines[0]["route"])
	assert.EqualValues(t, 200, lines[0]["status"])
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, OrNoOp(nil))
	l := NewDefaultSlogLogger()
	assert.Same(t, l, OrNoOp(l))
}
